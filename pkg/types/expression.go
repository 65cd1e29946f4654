// Package types defines the data model shared by the parser, the renderer
// and the facade:
//   - Node: the closed set of JEXL AST node types
//   - Expression: a parsed expression together with its source text
//   - Error: structured errors with codes
package types

// Expression is a parsed JEXL expression.
//
// It is safe for concurrent use by multiple goroutines; neither the AST nor
// the source are modified after parsing.
type Expression struct {
	ast    Node
	source string
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast Node, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the root of the Abstract Syntax Tree.
func (e *Expression) AST() Node {
	return e.ast
}

// Source returns the source text the expression was parsed from.
func (e *Expression) Source() string {
	return e.source
}

// String returns the source text of the expression.
func (e *Expression) String() string {
	return e.source
}
