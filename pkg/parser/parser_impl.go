package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

// Binding powers outside the grammar's precedence range.
const (
	bpTernary = 1               // ? binds loosest
	bpUnary   = math.MaxInt - 1 // operand of a unary operator
	bpPostfix = math.MaxInt     // . [ |
)

// Parser implements a recursive descent parser for JEXL expressions.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer   *Lexer
	grammar *grammar.Grammar
	current Token
	prev    Token
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		Grammar:  grammar.Default(),
		MaxDepth: 1000,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Grammar == nil {
		options.Grammar = grammar.Default()
	}

	p := &Parser{
		lexer:   NewLexer(input, options.Grammar),
		grammar: options.Grammar,
		opts:    options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire expression and returns it with its AST.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntaxError, "Empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.unexpected()
	}

	return types.NewExpression(node, p.lexer.input), nil
}

// infixPower returns the left binding power of the current token, or 0 if
// it cannot continue an expression.
func (p *Parser) infixPower() int {
	switch p.current.Type {
	case TokenBinaryOp:
		prec, _ := p.grammar.Precedence(p.current.Value)
		return prec
	case TokenQuestion:
		return bpTernary
	case TokenDot, TokenBracketOpen, TokenPipe:
		return bpPostfix
	default:
		return 0
	}
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next(p.expectOperand())
}

// expectOperand determines if the token after the current one starts an
// operand, in which case a minus sign belongs to a number.
func (p *Parser) expectOperand() bool {
	switch p.current.Type {
	case TokenBinaryOp, TokenUnaryOp:
		return true
	case TokenComma, TokenColon, TokenQuestion:
		return true
	case TokenParenOpen, TokenBracketOpen, TokenBraceOpen:
		return true
	case TokenEOF:
		return true // Start of expression
	default:
		return false
	}
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		if p.current.Type == TokenError {
			return p.lexer.Error()
		}
		return p.error(types.ErrExpectedToken, fmt.Sprintf("Expected %s but got %s", tt.String(), p.describe()))
	}
	p.advance()
	return nil
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// unexpected reports the current token as out of place, deferring to the
// lexer when the token is a lexing error.
func (p *Parser) unexpected() error {
	switch p.current.Type {
	case TokenError:
		return p.lexer.Error()
	case TokenEOF:
		return p.error(types.ErrUnexpectedEnd, "Unexpected end of expression")
	default:
		return p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", p.describe()))
	}
}

func (p *Parser) describe() string {
	if p.current.Value != "" {
		return strconv.Quote(p.current.Value)
	}
	return p.current.Type.String()
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (types.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrMaxDepth, fmt.Sprintf("Expression nested deeper than %d", p.opts.MaxDepth))
	}

	// Parse prefix expression (nud - null denotation)
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < p.infixPower() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
// These are expressions that don't require a left-hand side.
func (p *Parser) parsePrefix() (types.Node, error) {
	switch p.current.Type {
	case TokenString:
		return p.parseString()
	case TokenNumber:
		return p.parseNumber()
	case TokenBoolean:
		node := &types.Literal{Value: p.current.Value == "true"}
		p.advance()
		return node, nil
	case TokenIdentifier:
		return p.parseIdentifier()
	case TokenUnaryOp:
		return p.parseUnary()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenBracketOpen:
		return p.parseArray()
	case TokenBraceOpen:
		return p.parseObject()
	default:
		return nil, p.unexpected()
	}
}

// parseInfix parses an infix expression (led - left denotation).
// These are expressions that require a left-hand side.
func (p *Parser) parseInfix(left types.Node) (types.Node, error) {
	switch p.current.Type {
	case TokenBinaryOp:
		return p.parseBinary(left)
	case TokenQuestion:
		return p.parseConditional(left)
	case TokenDot:
		return p.parseMember(left)
	case TokenBracketOpen:
		return p.parseFilter(left)
	case TokenPipe:
		return p.parseTransform(left)
	default:
		return nil, p.unexpected()
	}
}

// unescapeString processes escape sequences in a string literal.
// Handles standard escapes (\n, \t, etc.) and Unicode escapes (\uXXXX).
// Also handles UTF-16 surrogate pairs for characters outside the BMP.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\', '"', '\'', '/':
			result.WriteByte(s[i])
		case 'u':
			r, n, err := decodeUnicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			result.WriteRune(r)
			i += n
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}

// decodeUnicodeEscape decodes the XXXX of a \uXXXX escape, and the low half
// of a surrogate pair when one follows. It returns the rune and the number
// of bytes consumed from s.
func decodeUnicodeEscape(s string) (rune, int, error) {
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("invalid \\u escape: not enough characters")
	}
	hi, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid \\u escape: %s", s[:4])
	}

	r := rune(hi)
	if !utf16.IsSurrogate(r) || len(s) < 10 || s[4:6] != `\u` {
		return r, 4, nil
	}
	lo, err := strconv.ParseUint(s[6:10], 16, 16)
	if err != nil {
		return r, 4, nil
	}
	if pair := utf16.DecodeRune(r, rune(lo)); pair != unicode.ReplacementChar {
		return pair, 10, nil
	}
	return r, 4, nil
}

// parseString parses a string literal.
func (p *Parser) parseString() (types.Node, error) {
	unescaped, err := unescapeString(p.current.Value)
	if err != nil {
		return nil, p.error(types.ErrInvalidEscape, fmt.Sprintf("Invalid string literal: %v", err))
	}

	node := &types.Literal{Value: unescaped}
	p.advance()
	return node, nil
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (types.Node, error) {
	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrInvalidNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node := &types.Literal{Value: val}
	p.advance()
	return node, nil
}

// parseIdentifier parses a bare identifier or, when it is directly followed
// by an argument list, a function call.
func (p *Parser) parseIdentifier() (types.Node, error) {
	name := p.current.Value
	p.advance()

	if p.current.Type != TokenParenOpen {
		return &types.Identifier{Value: name}, nil
	}

	args, err := p.parseArguments(nil)
	if err != nil {
		return nil, err
	}
	return &types.FunctionCall{Pool: types.PoolFunctions, Name: name, Args: args}, nil
}

// parseUnary parses a unary operator and the operand it applies to.
func (p *Parser) parseUnary() (types.Node, error) {
	op := p.current.Value
	p.advance()

	right, err := p.parseExpression(bpUnary)
	if err != nil {
		return nil, err
	}
	return &types.UnaryExpression{Operator: op, Right: right}, nil
}

// parseGrouping parses a parenthesized expression.
// Parentheses only group; they leave no trace in the AST.
func (p *Parser) parseGrouping() (types.Node, error) {
	p.advance() // Skip '('

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseArray parses an array literal [...].
func (p *Parser) parseArray() (types.Node, error) {
	p.advance() // Skip '['

	node := &types.ArrayLiteral{Value: []types.Node{}}

	if p.current.Type == TokenBracketClose {
		p.advance()
		return node, nil
	}

	for {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Value = append(node.Value, expr)

		if p.current.Type == TokenBracketClose {
			p.advance()
			break
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// parseObject parses an object literal { key: value, ... }.
// Keys are bare identifiers.
func (p *Parser) parseObject() (types.Node, error) {
	p.advance() // Skip '{'

	node := &types.ObjectLiteral{Value: []types.ObjectEntry{}}

	if p.current.Type == TokenBraceClose {
		p.advance()
		return node, nil
	}

	for {
		if p.current.Type != TokenIdentifier {
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected object key but got %s", p.describe()))
		}
		key := p.current.Value
		p.advance()

		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}

		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Value = append(node.Value, types.ObjectEntry{Key: key, Value: value})

		if p.current.Type == TokenBraceClose {
			p.advance()
			break
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// parseBinary parses the right operand of a binary operator.
// The right operand binds at the operator's own precedence, which makes
// operators of equal precedence associate to the left.
func (p *Parser) parseBinary(left types.Node) (types.Node, error) {
	op := p.current.Value
	prec, _ := p.grammar.Precedence(op)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &types.BinaryExpression{Operator: op, Left: left, Right: right}, nil
}

// parseConditional parses test ? consequent : alternate. Everything parsed
// so far at this level is the test.
func (p *Parser) parseConditional(test types.Node) (types.Node, error) {
	p.advance() // Skip '?'

	consequent, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}

	alternate, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	return &types.ConditionalExpression{Test: test, Consequent: consequent, Alternate: alternate}, nil
}

// parseMember parses .name following an expression.
func (p *Parser) parseMember(left types.Node) (types.Node, error) {
	p.advance() // Skip '.'

	if p.current.Type != TokenIdentifier {
		return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected identifier after '.' but got %s", p.describe()))
	}
	node := &types.Identifier{Value: p.current.Value, From: left}
	p.advance()
	return node, nil
}

// parseFilter parses subject[expr]. A dot directly after the bracket makes
// the filter relative: subject[.name == 1].
func (p *Parser) parseFilter(subject types.Node) (types.Node, error) {
	p.advance() // Skip '['

	relative := false
	if p.current.Type == TokenDot {
		relative = true
		p.advance()
		if p.current.Type != TokenIdentifier {
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected identifier after '[.' but got %s", p.describe()))
		}
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}

	return &types.FilterExpression{Subject: subject, Expr: expr, Relative: relative}, nil
}

// parseTransform parses subject | name or subject | name(args).
func (p *Parser) parseTransform(subject types.Node) (types.Node, error) {
	p.advance() // Skip '|'

	if p.current.Type != TokenIdentifier {
		return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected transform name but got %s", p.describe()))
	}
	name := p.current.Value
	p.advance()

	args := []types.Node{subject}
	if p.current.Type == TokenParenOpen {
		var err error
		if args, err = p.parseArguments(args); err != nil {
			return nil, err
		}
	}

	return &types.FunctionCall{Pool: types.PoolTransforms, Name: name, Args: args}, nil
}

// parseArguments parses a parenthesized, comma-separated argument list and
// appends the arguments to args.
func (p *Parser) parseArguments(args []types.Node) ([]types.Node, error) {
	p.advance() // Skip '('

	if args == nil {
		args = []types.Node{}
	}

	if p.current.Type == TokenParenClose {
		p.advance()
		return args, nil
	}

	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current.Type == TokenParenClose {
			p.advance()
			return args, nil
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}
