// Package parser implements a JEXL parser.
//
// The parser produces the ASTs consumed by package render and is what the
// formatter uses to turn source text into a tree. It is a hand-written
// Pratt parser whose binary operators, and their precedence, come from a
// grammar.Grammar.
//
// # Architecture
//
// The parser consists of two components:
//   - Lexer: Tokenizes the input expression into a stream of tokens
//   - Parser: Builds an Abstract Syntax Tree (AST) from tokens
//
// # Example
//
//	expr, err := parser.Parse(`foo.bar[.baz == "x"] | upper`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
//
// # Binding
//
// From loosest to tightest: the ternary operator; binary operators by
// precedence, all left-associative; unary operators; and the postfix forms
// .name, [filter] and | transform, which bind to the operand immediately
// before them.
package parser

import (
	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

// Parse parses a JEXL expression using the default grammar.
//
// If parsing fails, it returns a *types.Error with position information.
//
// Example:
//
//	expr, err := parser.Parse("a.b == 3")
//	if err != nil {
//	    fmt.Printf("Parse error: %v\n", err)
//	    return
//	}
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// Compile parses a JEXL expression with the given options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// Grammar supplies the operator table. Defaults to grammar.Default().
	Grammar *grammar.Grammar
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
}

// WithGrammar sets the operator table.
func WithGrammar(g *grammar.Grammar) CompileOption {
	return func(opts *CompileOptions) {
		opts.Grammar = g
	}
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
