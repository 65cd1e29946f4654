// Package jexltostring turns JEXL expression trees back into source text.
//
// JEXL is a small expression language with binary and unary operators,
// ternaries, member access, filters and transforms. This package renders a
// parsed tree as canonical text that parses back to the same tree, using
// parentheses only where the grammar's precedence and left associativity
// require them.
//
// # Quick Start
//
//	// Render an AST you already have
//	s := jexltostring.String(grammar.Default(), ast)
//
//	// Canonicalise source text
//	s, err := jexltostring.Format("(a + b) + (c * d)") // "a + b + c * d"
//
//	// Format many expressions with one configuration
//	f := jexltostring.New(
//	    jexltostring.WithCaching(true),
//	    jexltostring.WithGrammar(g),
//	)
//	s, err = f.Format("foo  [.bar == 1]")
//
// # More Information
//
// For detailed documentation, see:
//   - Renderer: github.com/chetbox/jexl-to-string/pkg/render
//   - Parser: github.com/chetbox/jexl-to-string/pkg/parser
//   - Grammar: github.com/chetbox/jexl-to-string/pkg/grammar
//   - Types: github.com/chetbox/jexl-to-string/pkg/types
package jexltostring

import (
	"fmt"

	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/render"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

// Version returns the current version of jexl-to-string.
func Version() string {
	return "v0.1.0-dev"
}

// String renders node as JEXL source using grammar g, or the default
// grammar when g is nil.
//
// It panics with a *types.Error if the tree uses an operator g does not
// define or holds a value that has no JEXL form. Use Render to get an error
// instead.
//
// Example:
//
//	ast := &types.BinaryExpression{Operator: "-", Left: a, Right: &types.BinaryExpression{Operator: "-", Left: b, Right: c}}
//	jexltostring.String(grammar.Default(), ast) // "a - (b - c)"
func String(g *grammar.Grammar, node types.Node) string {
	return render.String(g, node)
}

// Render is like String but returns contract violations as an error.
func Render(g *grammar.Grammar, node types.Node) (string, error) {
	return render.Render(g, node)
}

// Format parses src and renders it back in canonical form.
//
// For repeated formatting, create a Formatter with New instead.
//
// Example:
//
//	s, err := jexltostring.Format("1 + (2 * 3)") // "1 + 2 * 3"
func Format(src string, opts ...Option) (string, error) {
	return New(opts...).Format(src)
}

// MustFormat is like Format but panics if src cannot be formatted.
// It simplifies safe initialization of global variables.
func MustFormat(src string) string {
	s, err := Format(src)
	if err != nil {
		panic(fmt.Sprintf("jexltostring: Format(%q): %v", src, err))
	}
	return s
}
