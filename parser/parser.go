package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/token"
)

// DefaultEntryPoint is the function name treated as the program's start.
const DefaultEntryPoint = "main"

type Parser struct {
	tokens     []token.Token
	current    int
	entry      string
	nodes      []ast.Node
	signatures []ast.Signature
	err        error
}

func NewParser(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Kind: token.EOF, Line: line})
	}

	return &Parser{tokens: tokens, entry: DefaultEntryPoint}
}

// Parse parses tokens with the default entry point.
func Parse(tokens []token.Token) ([]ast.Node, error) {
	return NewParser(tokens).Parse()
}

// SetEntryPoint changes the function name that gets a trailing Main node.
func (p *Parser) SetEntryPoint(name string) *Parser {
	p.entry = name
	return p
}

// Parse consumes every token and returns the IR built so far together with
// the joined diagnostics, if any. Each failed declaration contributes one
// *Error and leaves no nodes behind.
func (p *Parser) Parse() ([]ast.Node, error) {
	p.current = 0
	p.err = nil
	p.nodes = []ast.Node{}
	p.signatures = nil

	for !p.IsAtEnd() {
		p.declaration()
	}

	return p.nodes, p.err
}

// Program parses and bundles the IR with the collected signatures.
func (p *Parser) Program() (*ast.Program, error) {
	nodes, err := p.Parse()
	return &ast.Program{Nodes: nodes, Signatures: p.signatures}, err
}

// Signatures returns the function and method signatures in declaration order.
func (p *Parser) Signatures() []ast.Signature {
	return p.signatures
}

// declaration = classDecl | "fn" function | letDecl | statement | callStmt | assignStmt ;
func (p *Parser) declaration() {
	mark, sigMark := len(p.nodes), len(p.signatures)

	if err := p.declare(); err != nil {
		p.nodes = p.nodes[:mark]
		p.signatures = p.signatures[:sigMark]
		p.recover(err)
		p.synchronize()
	}
}

func (p *Parser) declare() error {
	switch {
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.FN):
		return p.function("function")
	case p.match(token.LET):
		return p.letDecl()
	case p.check(token.FOR, token.IF, token.PRINT, token.RETURN, token.WHILE, token.BREAK, token.LEFTBRACE):
		return p.statement()
	case p.check(token.IDENT) && p.checkNext(token.LEFTPAREN):
		return p.callStmt()
	case p.check(token.IDENT) && p.checkNext(token.ASSIGN):
		return p.assignStmt()
	default:
		return p.errorAt(p.peek(), "Expect declaration.")
	}
}

// classDecl = "class" IDENT ("<" IDENT)? "{" ("fn"? function)* "}" ;
func (p *Parser) classDecl() error {
	p.emit(ast.Class)

	if _, err := p.consume(token.IDENT, "Expect class name."); err != nil {
		return err
	}
	p.emit(ast.Identifier)

	if p.match(token.LESS) {
		p.emit(ast.Less)
		if _, err := p.consume(token.IDENT, "Expect superclass name."); err != nil {
			return err
		}
		p.emit(ast.Identifier)
	}

	if _, err := p.consume(token.LEFTBRACE, "Expect '{' before class body."); err != nil {
		return err
	}
	p.emit(ast.LeftBrace)

	for !p.check(token.RIGHTBRACE) && !p.IsAtEnd() {
		p.match(token.FN)
		if err := p.function("method"); err != nil {
			return err
		}
	}

	if _, err := p.consume(token.RIGHTBRACE, "Expect '}' after class body."); err != nil {
		return err
	}
	p.emit(ast.RightBrace)

	return nil
}

// function = IDENT "(" (param ("," param)*)? ")" block ;
func (p *Parser) function(kind string) error {
	p.emitValue(ast.Fn, "fn", p.peek().Line)

	name, err := p.consume(token.IDENT, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return err
	}
	p.emit(ast.Identifier)

	if _, err := p.consume(token.LEFTPAREN, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return err
	}
	p.emit(ast.LeftParen)

	sig := ast.Signature{Name: name.Lexeme}
	if !p.check(token.RIGHTPAREN) {
		for {
			param, err := p.param()
			if err != nil {
				return err
			}
			sig.Params = append(sig.Params, param)

			if !p.match(token.COMMA) {
				break
			}
			p.emit(ast.Comma)
		}
	}

	if _, err := p.consume(token.RIGHTPAREN, "Expect ')' after parameters."); err != nil {
		return err
	}
	p.emit(ast.RightParen)

	// Recorded before the body so signatures line up with the order of Fn nodes.
	p.signatures = append(p.signatures, sig)

	if _, err := p.consume(token.LEFTBRACE, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return err
	}
	if err := p.block(); err != nil {
		return err
	}

	if kind == "function" && name.Lexeme == p.entry {
		p.emitValue(ast.Main, name.Lexeme, p.previous().Line)
	}

	return nil
}

// param = IDENT ":" ("number" | "string" | "bool") ;
func (p *Parser) param() (ast.Param, error) {
	name, err := p.consume(token.IDENT, "Expect parameter name.")
	if err != nil {
		return ast.Param{}, err
	}
	p.emit(ast.Identifier)

	if _, err := p.consume(token.COLON, "Parameter must be annotated as name: type."); err != nil {
		return ast.Param{}, err
	}

	if !p.match(token.NUMBERTYPE, token.STRINGTYPE, token.BOOLTYPE) {
		return ast.Param{}, p.errorAt(p.peek(), "Parameter requires a type.")
	}

	return ast.Param{Name: name.Lexeme, Type: p.previous().Lexeme}, nil
}

// block = "{" declaration* "}" ;
// The opening brace has already been consumed.
func (p *Parser) block() error {
	p.emit(ast.LeftBrace)

	for !p.check(token.RIGHTBRACE) && !p.IsAtEnd() {
		p.declaration()
	}

	if _, err := p.consume(token.RIGHTBRACE, "Expect '}' after block."); err != nil {
		return err
	}
	p.emit(ast.RightBrace)

	return nil
}

// letDecl = "let" IDENT "=" (STRING | NUMBER) ";" ;
func (p *Parser) letDecl() error {
	p.emit(ast.Let)

	if _, err := p.consume(token.IDENT, "Expect variable name."); err != nil {
		return err
	}
	p.emit(ast.Identifier)

	if _, err := p.consume(token.ASSIGN, "Expect '=' after variable name."); err != nil {
		return err
	}
	p.emit(ast.Assign)

	switch {
	case p.match(token.STRING):
		p.emit(ast.String)
	case p.match(token.NUMBER):
		p.emit(ast.Number)
	default:
		return p.errorAt(p.peek(), "Expect a string or number value.")
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	return nil
}

// statement = breakStmt | forStmt | ifStmt | printStmt | returnStmt | whileStmt | block ;
// breakStmt = "break" ";" ;
func (p *Parser) statement() error {
	switch {
	case p.match(token.BREAK):
		p.emit(ast.Break)
		if _, err := p.consume(token.SEMICOLON, "Expect ';' after 'break'."); err != nil {
			return err
		}
		p.emit(ast.SemiColon)

		return nil
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.LEFTBRACE):
		return p.block()
	default:
		return p.errorAt(p.peek(), "Expect statement.")
	}
}

// body = callStmt | assignStmt | statement ;
func (p *Parser) body() error {
	switch {
	case p.check(token.IDENT) && p.checkNext(token.LEFTPAREN):
		return p.callStmt()
	case p.check(token.IDENT) && p.checkNext(token.ASSIGN):
		return p.assignStmt()
	default:
		return p.statement()
	}
}

// printStmt = "print" "(" STRING ("," (IDENT | NUMBER | STRING))* ")" ";" ;
// Each argument replaces the next "{}" of the format string with ${argument}.
func (p *Parser) printStmt() error {
	p.emit(ast.Print)

	if _, err := p.consume(token.LEFTPAREN, "Expect '(' after 'print'."); err != nil {
		return err
	}
	p.emit(ast.LeftParen)

	format, err := p.consume(token.STRING, "Expect a format string.")
	if err != nil {
		return err
	}

	var args []string
	for p.match(token.COMMA) {
		if !p.match(token.IDENT, token.NUMBER, token.STRING) {
			return p.errorAt(p.peek(), "Expect a value after ','.")
		}
		arg := p.previous()
		if text, ok := arg.Literal.(string); ok && arg.Kind == token.STRING {
			args = append(args, strconv.Quote(text))
		} else {
			args = append(args, arg.Lexeme)
		}
	}
	text, _ := format.Literal.(string)
	p.emitValue(ast.String, "`"+interpolate(text, args)+"`", format.Line)

	if _, err := p.consume(token.RIGHTPAREN, "Expect ')' after print arguments."); err != nil {
		return err
	}
	p.emit(ast.RightParen)

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after print statement."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	return nil
}

// interpolate replaces the placeholders of the format string with the
// arguments in order. Placeholders inside substituted arguments are left alone.
func interpolate(format string, args []string) string {
	parts := strings.Split(format, "{}")
	var b strings.Builder
	b.WriteString(parts[0])
	for i, part := range parts[1:] {
		if i < len(args) {
			b.WriteString("${" + args[i] + "}")
		} else {
			b.WriteString("{}")
		}
		b.WriteString(part)
	}
	return b.String()
}

// callStmt = IDENT "(" (argument ("," argument)*)? ")" ";" ;
func (p *Parser) callStmt() error {
	if _, err := p.consume(token.IDENT, "Expect function name."); err != nil {
		return err
	}
	p.emit(ast.Identifier)

	if _, err := p.consume(token.LEFTPAREN, "Expect '(' after function name."); err != nil {
		return err
	}
	p.emit(ast.LeftParen)

	if !p.check(token.RIGHTPAREN) {
		for {
			if err := p.argument(); err != nil {
				return err
			}
			if !p.match(token.COMMA) {
				break
			}
			p.emit(ast.Comma)
		}
	}

	if _, err := p.consume(token.RIGHTPAREN, "Expect ')' after arguments."); err != nil {
		return err
	}
	p.emit(ast.RightParen)

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after function call."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	return nil
}

// argument = IDENT | STRING | NUMBER ;
func (p *Parser) argument() error {
	switch {
	case p.match(token.IDENT):
		p.emit(ast.Identifier)
	case p.match(token.STRING):
		p.emit(ast.String)
	case p.match(token.NUMBER):
		p.emit(ast.Number)
	default:
		return p.errorAt(p.peek(), "Expect argument.")
	}

	return nil
}

// assignStmt = assignment ";" ;
func (p *Parser) assignStmt() error {
	if err := p.assignment(); err != nil {
		return err
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after assignment."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	return nil
}

// assignment = IDENT "=" expression ;
func (p *Parser) assignment() error {
	if _, err := p.consume(token.IDENT, "Expect variable name."); err != nil {
		return err
	}
	p.emit(ast.Identifier)

	if _, err := p.consume(token.ASSIGN, "Expect '=' after variable name."); err != nil {
		return err
	}
	p.emit(ast.Assign)

	return p.expression()
}

// ifStmt = "if" "(" expression ")" body ("else" body)? ;
func (p *Parser) ifStmt() error {
	p.emit(ast.If)

	if err := p.condition("if"); err != nil {
		return err
	}

	if err := p.body(); err != nil {
		return err
	}

	if p.match(token.ELSE) {
		p.emit(ast.Else)
		return p.body()
	}

	return nil
}

// whileStmt = "while" "(" expression ")" body ;
func (p *Parser) whileStmt() error {
	p.emit(ast.While)

	if err := p.condition("while"); err != nil {
		return err
	}

	return p.body()
}

func (p *Parser) condition(keyword string) error {
	if _, err := p.consume(token.LEFTPAREN, fmt.Sprintf("Expect '(' after '%s'.", keyword)); err != nil {
		return err
	}
	p.emit(ast.LeftParen)

	if err := p.expression(); err != nil {
		return err
	}

	if _, err := p.consume(token.RIGHTPAREN, fmt.Sprintf("Expect ')' after %s condition.", keyword)); err != nil {
		return err
	}
	p.emit(ast.RightParen)

	return nil
}

// forStmt = "for" "(" (letDecl | assignStmt | ";") expression? ";" assignment? ")" body ;
func (p *Parser) forStmt() error {
	p.emit(ast.For)

	if _, err := p.consume(token.LEFTPAREN, "Expect '(' after 'for'."); err != nil {
		return err
	}
	p.emit(ast.LeftParen)

	var err error
	switch {
	case p.match(token.SEMICOLON):
		p.emit(ast.SemiColon)
	case p.match(token.LET):
		err = p.letDecl()
	case p.check(token.IDENT):
		err = p.assignStmt()
	default:
		err = p.errorAt(p.peek(), "Expect loop initializer.")
	}
	if err != nil {
		return err
	}

	if !p.check(token.SEMICOLON) {
		if err := p.expression(); err != nil {
			return err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	if !p.check(token.RIGHTPAREN) {
		if err := p.assignment(); err != nil {
			return err
		}
	}
	if _, err := p.consume(token.RIGHTPAREN, "Expect ')' after for clauses."); err != nil {
		return err
	}
	p.emit(ast.RightParen)

	return p.body()
}

// returnStmt = "return" expression? ";" ;
func (p *Parser) returnStmt() error {
	p.emit(ast.Return)

	if !p.check(token.SEMICOLON) {
		if err := p.expression(); err != nil {
			return err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return err
	}
	p.emit(ast.SemiColon)

	return nil
}

var operands = map[token.Kind]ast.Kind{
	token.NUMBER: ast.Number,
	token.STRING: ast.String,
	token.IDENT:  ast.Identifier,
	token.TRUE:   ast.True,
	token.FALSE:  ast.False,
	token.NIL:    ast.Nil,
}

var operators = map[token.Kind]ast.Kind{
	token.PLUS:         ast.Plus,
	token.MINUS:        ast.Minus,
	token.STAR:         ast.Star,
	token.SLASH:        ast.Slash,
	token.EQUALS:       ast.Equals,
	token.BANGEQUAL:    ast.BangEqual,
	token.LESS:         ast.Less,
	token.LESSEQUAL:    ast.LessEqual,
	token.GREATER:      ast.Greater,
	token.GREATEREQUAL: ast.GreaterEqual,
	token.AND:          ast.And,
	token.OR:           ast.Or,
}

// expression = operand (operator operand)* ;
// operand = NUMBER | STRING | IDENT | "true" | "false" | "nil" ;
// operator = "+" | "-" | "*" | "/" | "==" | "!=" | "<" | "<=" | ">" | ">=" | "and" | "or" ;
// Operators are kept in source order; there is no precedence.
func (p *Parser) expression() error {
	if err := p.operand(); err != nil {
		return err
	}

	for {
		kind, ok := operators[p.peek().Kind]
		if !ok {
			return nil
		}
		p.advance()
		p.emit(kind)

		if err := p.operand(); err != nil {
			return err
		}
	}
}

func (p *Parser) operand() error {
	kind, ok := operands[p.peek().Kind]
	if !ok {
		return p.errorAt(p.peek(), "Expect expression.")
	}
	p.advance()
	p.emit(kind)

	return nil
}

func (p *Parser) recover(err error) {
	p.err = errors.Join(p.err, err)
}

func (p *Parser) errorAt(tok token.Token, message string) error {
	return &Error{Token: tok, Message: message}
}

// synchronize skips tokens until the end of the broken statement: either a
// ';' has just been passed or the next token opens a new declaration.
func (p *Parser) synchronize() {
	p.advance()

	for !p.IsAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}

		//exhaustive:ignore
		switch p.peek().Kind {
		case token.CLASS, token.FN, token.LET, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}

		p.advance()
	}
}

func (p *Parser) emit(kind ast.Kind) {
	tok := p.previous()
	p.nodes = append(p.nodes, ast.Node{Kind: kind, Lexeme: tok.Lexeme, Literal: tok.Literal, Line: tok.Line})
}

func (p *Parser) emitValue(kind ast.Kind, lexeme string, line int) {
	p.nodes = append(p.nodes, ast.Node{Kind: kind, Lexeme: lexeme, Line: line})
}

func (p Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p Parser) peekNext() token.Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.current+1]
}

func (p *Parser) advance() token.Token {
	if !p.IsAtEnd() {
		p.current++
	}

	return p.previous()
}

func (p Parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}

	return p.tokens[p.current-1]
}

func (p Parser) IsAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// check reports whether the current token has one of kinds, without consuming it.
func (p Parser) check(kinds ...token.Kind) bool {
	if p.IsAtEnd() {
		return false
	}
	for _, kind := range kinds {
		if p.peek().Kind == kind {
			return true
		}
	}

	return false
}

func (p Parser) checkNext(kind token.Kind) bool {
	if p.IsAtEnd() {
		return false
	}

	return p.peekNext().Kind == kind
}

// match consumes the current token if it has one of kinds.
func (p *Parser) match(kinds ...token.Kind) bool {
	if p.check(kinds...) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	return p.peek(), p.errorAt(p.peek(), message)
}
