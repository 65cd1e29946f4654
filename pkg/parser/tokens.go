package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString     // "hello" or 'hello'
	TokenNumber     // 123, 3.14, -1, .5
	TokenBoolean    // true, false
	TokenIdentifier // foo

	// Operators, as defined by the grammar
	TokenBinaryOp // +, ==, in, ...
	TokenUnaryOp  // !

	// Grouping symbols
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }
	TokenParenOpen    // (
	TokenParenClose   // )

	// Basic symbols
	TokenDot      // .
	TokenComma    // ,
	TokenColon    // :
	TokenQuestion // ?
	TokenPipe     // |
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenBoolean:
		return "(boolean)"
	case TokenIdentifier:
		return "(identifier)"
	case TokenBinaryOp:
		return "(binary operator)"
	case TokenUnaryOp:
		return "(unary operator)"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenDot:
		return "."
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenQuestion:
		return "?"
	case TokenPipe:
		return "|"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in a JEXL expression.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal value of the token
	Position int       // Starting position in the input string
}

// punctuation maps single-character symbols to token types.
var punctuation = [...]TokenType{
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	'(': TokenParenOpen,
	')': TokenParenClose,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	'?': TokenQuestion,
	'|': TokenPipe,
}

// lookupPunctuation returns the token type for a punctuation rune.
// Returns 0 if the rune is not punctuation.
func lookupPunctuation(r rune) TokenType {
	if r < 0 || r >= rune(len(punctuation)) {
		return 0
	}
	return punctuation[r]
}
