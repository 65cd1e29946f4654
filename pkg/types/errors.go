package types

import "fmt"

// ErrorCode identifies a class of error.
type ErrorCode string

// Error codes.
const (
	// S0xxx: Lexer/parser errors
	ErrStringNotClosed  ErrorCode = "S0101"
	ErrInvalidNumber    ErrorCode = "S0102"
	ErrInvalidEscape    ErrorCode = "S0103"
	ErrUnexpectedEnd    ErrorCode = "S0104"
	ErrInvalidCharacter ErrorCode = "S0105"
	ErrSyntaxError      ErrorCode = "S0201"
	ErrExpectedToken    ErrorCode = "S0202"
	ErrMaxDepth         ErrorCode = "S0204"

	// R01xx: Render contract violations
	ErrRenderUnknownOperator ErrorCode = "R0101"
	ErrRenderUnknownNode     ErrorCode = "R0102"
	ErrRenderNonFinite       ErrorCode = "R0103"
	ErrRenderLiteralType     ErrorCode = "R0104"
	ErrRenderEmptyTransform  ErrorCode = "R0105"
	ErrRenderUnknownPool     ErrorCode = "R0106"

	// G0xxx: Grammar definition errors
	ErrGrammarInvalid  ErrorCode = "G0101"
	ErrGrammarConflict ErrorCode = "G0102"
	ErrGrammarExtends  ErrorCode = "G0103"
)

// Error is a structured error carrying a code and, for syntax errors, the
// byte position in the source text.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new Error. Use a negative position when the error is
// not tied to a location in source text.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
