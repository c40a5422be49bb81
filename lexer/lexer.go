package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/takoeight0821/rustscript/token"
)

func Lex(source string) ([]token.Token, error) {
	lexer := lexer{
		source:  source,
		tokens:  []token.Token{},
		start:   0,
		current: 0,
		line:    1,
	}

	var err error

	for !lexer.isAtEnd() {
		err = errors.Join(err, lexer.scanToken())
	}

	lexer.tokens = append(lexer.tokens, token.Token{Kind: token.EOF, Lexeme: "", Line: lexer.line, Literal: nil})

	return lexer.tokens, err
}

type lexer struct {
	source string
	tokens []token.Token

	start   int // start of current lexeme
	current int // current position in source
	line    int // current line number
}

func (l lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current:])

	return runeValue
}

func (l lexer) peekNext() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	_, width := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+width >= len(l.source) {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current+width:])

	return runeValue
}

func (l *lexer) advance() rune {
	runeValue, width := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += width

	return runeValue
}

// follow consumes the next rune if it is expected.
func (l *lexer) follow(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()

	return true
}

func (l *lexer) addToken(kind token.Kind, literal any) {
	text := l.source[l.start:l.current]
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: text, Line: l.line, Literal: literal})
}

type UnexpectedCharacterError struct {
	Line int
	Char rune
}

func (e UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("unexpected character: %c at line %d", e.Char, e.Line)
}

func (l *lexer) scanToken() error {
	l.start = l.current
	char := l.advance()
	switch char {
	case ' ', '\r', '\t':
		// ignore whitespace
		return nil
	case '\n':
		l.line++

		return nil
	case '"':
		return l.string()
	case '!':
		l.either('=', token.BANGEQUAL, token.BANG)

		return nil
	case '=':
		l.either('=', token.EQUALS, token.ASSIGN)

		return nil
	case '<':
		l.either('=', token.LESSEQUAL, token.LESS)

		return nil
	case '>':
		l.either('=', token.GREATEREQUAL, token.GREATER)

		return nil
	case '/':
		if l.follow('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else {
			l.addToken(token.SLASH, nil)
		}

		return nil
	default:
		if k, ok := getReservedSymbol(char); ok {
			l.addToken(k, nil)

			return nil
		}
		if isDigit(char) {
			return l.number()
		}
		if isAlpha(char) {
			return l.identifier()
		}
	}

	return UnexpectedCharacterError{Line: l.line, Char: char}
}

func (l *lexer) either(next rune, matched, single token.Kind) {
	if l.follow(next) {
		l.addToken(matched, nil)
	} else {
		l.addToken(single, nil)
	}
}

type UnterminatedStringError struct {
	Line int
}

func (e UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string at line %d", e.Line)
}

func (l *lexer) string() error {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}

	if l.isAtEnd() {
		return UnterminatedStringError{Line: l.line}
	}

	// the closing quote
	l.advance()

	value := l.source[l.start+1 : l.current-1]
	l.addToken(token.STRING, value)

	return nil
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) number() error {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	value, err := strconv.ParseFloat(l.source[l.start:l.current], 64)
	if err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	l.addToken(token.NUMBER, value)

	return nil
}

func isAlpha(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func (l *lexer) identifier() error {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	value := l.source[l.start:l.current]

	if k, ok := getKeyword(value); ok {
		l.addToken(k, nil)
	} else {
		l.addToken(token.IDENT, nil)
	}

	return nil
}

var keywords = map[string]token.Kind{
	"and":    token.AND,
	"bool":   token.BOOLTYPE,
	"break":  token.BREAK,
	"class":  token.CLASS,
	"else":   token.ELSE,
	"false":  token.FALSE,
	"fn":     token.FN,
	"for":    token.FOR,
	"if":     token.IF,
	"let":    token.LET,
	"nil":    token.NIL,
	"number": token.NUMBERTYPE,
	"or":     token.OR,
	"print":  token.PRINT,
	"return": token.RETURN,
	"string": token.STRINGTYPE,
	"super":  token.SUPER,
	"this":   token.THIS,
	"true":   token.TRUE,
	"while":  token.WHILE,
}

func getKeyword(str string) (token.Kind, bool) {
	if k, ok := keywords[str]; ok {
		return k, true
	}

	return token.IDENT, false
}

var reservedSymbols = map[rune]token.Kind{
	'(': token.LEFTPAREN,
	')': token.RIGHTPAREN,
	'{': token.LEFTBRACE,
	'}': token.RIGHTBRACE,
	',': token.COMMA,
	'.': token.DOT,
	'-': token.MINUS,
	'+': token.PLUS,
	';': token.SEMICOLON,
	'*': token.STAR,
	':': token.COLON,
}

func getReservedSymbol(char rune) (token.Kind, bool) {
	if k, ok := reservedSymbols[char]; ok {
		return k, true
	}

	return token.EOF, false
}
