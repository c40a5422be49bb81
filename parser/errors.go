package parser

import (
	"fmt"

	"github.com/takoeight0821/rustscript/token"
)

// Error is a parse diagnostic. It keeps the offending token so the message
// can point at its line and lexeme.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Kind == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

// Diagnostics flattens the error returned by Parse into its parse errors.
func Diagnostics(err error) []*Error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*Error); ok {
		return []*Error{pe}
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var diags []*Error
	for _, e := range joined.Unwrap() {
		diags = append(diags, Diagnostics(e)...)
	}
	return diags
}
