package parser

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

const eof = -1

// Lexer converts a JEXL expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string           // Input string being scanned
	length  int              // Length of input string
	start   int              // Start position of current token
	current int              // Current position in input
	width   int              // Width of last rune read
	err     error            // First error encountered
	grammar *grammar.Grammar // Source of operator symbols
	symbols []string         // Symbolic operators, longest first
}

// NewLexer creates a new lexer from the provided input string, recognising
// the operators of g (the default grammar when g is nil).
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string, g *grammar.Grammar) *Lexer {
	if g == nil {
		g = grammar.Default()
	}

	var symbols []string
	for _, ops := range [][]string{g.BinaryOperators(), g.UnaryOperators()} {
		for _, op := range ops {
			if !grammar.IsWord(op) {
				symbols = append(symbols, op)
			}
		}
	}
	// Both lists are longest first; merge them so that "!=" wins over "!".
	slices.SortStableFunc(symbols, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	return &Lexer{
		input:   input,
		length:  len(input),
		grammar: g,
		symbols: symbols,
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
//
// The expectOperand parameter determines how a leading minus sign is read:
//   - As part of a negative number literal (when expectOperand is true)
//   - As the subtraction operator (when expectOperand is false)
//
// The parser must track context to determine which interpretation is correct.
func (l *Lexer) Next(expectOperand bool) Token {
	if l.err != nil {
		return Token{Type: TokenError, Position: l.start}
	}

	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// String literals (single or double quoted)
	if ch == '"' || ch == '\'' {
		l.ignore()
		return l.scanString(ch)
	}

	// Number literals, optionally signed in operand position
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}
	if expectOperand && (ch == '-' || ch == '.') && l.startsNumber(ch) {
		l.backup()
		return l.scanNumber()
	}

	// Identifiers, booleans and word operators
	if isIdentStart(ch) {
		l.backup()
		return l.scanName()
	}

	// Symbolic operators take priority over punctuation so that "||" is not
	// read as two pipes.
	l.backup()
	rest := l.input[l.current:]
	for _, sym := range l.symbols {
		if strings.HasPrefix(rest, sym) {
			l.current += len(sym)
			return l.newToken(l.operatorType(sym))
		}
	}
	l.nextRune()

	if tt := lookupPunctuation(ch); tt > 0 {
		return l.newToken(tt)
	}

	return l.error(types.ErrInvalidCharacter, fmt.Sprintf("Invalid character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// startsNumber reports whether the sign or dot just read is followed by the
// digits of a number.
func (l *Lexer) startsNumber(ch rune) bool {
	rest := l.input[l.current:]
	if ch == '-' && strings.HasPrefix(rest, ".") {
		rest = rest[1:]
	}
	return rest != "" && isDigit(rune(rest[0]))
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
// Escape sequences are kept as written; the parser decodes them.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanNumber reads a number literal from the current position.
// Format: -?([0-9]+(\.[0-9]+)?|\.[0-9]+)
func (l *Lexer) scanNumber() Token {
	l.acceptRune('-')
	l.acceptAll(isDigit)

	// Decimal part. A dot without digits belongs to whatever follows.
	if rest := l.input[l.current:]; len(rest) > 1 && rest[0] == '.' && isDigit(rune(rest[1])) {
		l.current++
		l.acceptAll(isDigit)
	}

	return l.newToken(TokenNumber)
}

// scanName reads an identifier, boolean or word operator.
// Identifiers start with a letter or underscore and continue with letters,
// digits and underscores.
func (l *Lexer) scanName() Token {
	l.acceptAll(isIdentPart)
	t := l.newToken(TokenIdentifier)

	switch {
	case t.Value == "true" || t.Value == "false":
		t.Type = TokenBoolean
	case l.grammar.IsBinary(t.Value) || l.grammar.IsUnary(t.Value):
		t.Type = l.operatorType(t.Value)
	}
	return t
}

func (l *Lexer) operatorType(sym string) TokenType {
	if l.grammar.IsUnary(sym) {
		return TokenUnaryOp
	}
	return TokenBinaryOp
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
