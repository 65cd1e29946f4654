// Package render turns JEXL ASTs back into source text.
//
// The output re-parses to an equivalent AST, carries only the parentheses
// that are needed to preserve the tree's grouping, and is canonically
// formatted: single spaces around binary operators, double-quoted strings,
// shortest decimal numbers and dot syntax wherever a key allows it.
//
// # Example
//
//	expr, _ := parser.Parse("1 + (2 * 3)")
//	s := render.String(grammar.Default(), expr.AST()) // "1 + 2 * 3"
//
// # Contract
//
// The renderer trusts its input. An operator missing from the grammar, an
// unknown node type or a literal it cannot represent is a programming error:
// String panics with a *types.Error, and Render returns that error instead.
// Neither ever returns partial output.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

// infinite is the precedence of anything that never needs parentheses.
const infinite = math.MaxInt

// Renderer renders ASTs against a single grammar. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	grammar *grammar.Grammar
}

// New creates a Renderer for g. A nil grammar selects grammar.Default().
func New(g *grammar.Grammar) *Renderer {
	if g == nil {
		g = grammar.Default()
	}
	return &Renderer{grammar: g}
}

// String renders node with grammar g. See Renderer.String.
func String(g *grammar.Grammar, node types.Node) string {
	return New(g).String(node)
}

// Render renders node with grammar g. See Renderer.Render.
func Render(g *grammar.Grammar, node types.Node) (string, error) {
	return New(g).Render(node)
}

// Render is like String but reports contract violations as an error.
func (r *Renderer) Render(node types.Node) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(*types.Error)
			if !ok {
				panic(rec)
			}
			s, err = "", e
		}
	}()
	return r.String(node), nil
}

// String returns the canonical source text of node. A nil node renders as
// the empty string.
func (r *Renderer) String(node types.Node) string {
	if node == nil {
		return ""
	}

	switch n := node.(type) {
	case *types.Literal:
		return formatLiteral(n.Value)

	case *types.Identifier:
		if n.From != nil {
			return EscapeKeys(r.String(n.From), n.Value)
		}
		if IsBareIdentifier(n.Value) {
			return n.Value
		}
		return EscapeKeys("", n.Value)

	case *types.UnaryExpression:
		r.element(n.Operator)
		right := r.String(n.Right)
		switch n.Right.(type) {
		case *types.BinaryExpression, *types.ConditionalExpression:
			right = "(" + right + ")"
		}
		if grammar.IsWord(n.Operator) {
			// "not a", never "nota".
			return n.Operator + " " + right
		}
		return n.Operator + right

	case *types.BinaryExpression:
		el := r.element(n.Operator)
		left := r.bracketIfRequired(el, n.Left, false)
		right := r.bracketIfRequired(el, n.Right, true)
		return left + " " + n.Operator + " " + right

	case *types.ConditionalExpression:
		return r.bracketIfRequired(nil, n.Test, false) +
			" ? " + r.bracketIfRequired(nil, n.Consequent, false) +
			" : " + r.bracketIfRequired(nil, n.Alternate, false)

	case *types.ArrayLiteral:
		return "[" + r.join(n.Value) + "]"

	case *types.ObjectLiteral:
		entries := make([]string, len(n.Value))
		for i, entry := range n.Value {
			entries[i] = entry.Key + ": " + r.String(entry.Value)
		}
		return "{ " + strings.Join(entries, ", ") + " }"

	case *types.FilterExpression:
		var b strings.Builder
		b.WriteString(r.String(n.Subject))
		b.WriteByte('[')
		if n.Relative {
			b.WriteByte('.')
		}
		b.WriteString(r.String(n.Expr))
		b.WriteByte(']')
		return b.String()

	case *types.FunctionCall:
		return r.functionCall(n)

	default:
		panic(types.NewError(types.ErrRenderUnknownNode,
			fmt.Sprintf("unhandled node kind %s (%T)", node.Kind(), node), -1))
	}
}

func (r *Renderer) functionCall(n *types.FunctionCall) string {
	switch n.Pool {
	case types.PoolFunctions:
		return n.Name + "(" + r.join(n.Args) + ")"

	case types.PoolTransforms:
		// a | b is the transform b applied to the single argument a.
		if len(n.Args) == 0 {
			panic(types.NewError(types.ErrRenderEmptyTransform,
				fmt.Sprintf("transform %q has no subject", n.Name), -1))
		}
		s := r.String(n.Args[0]) + " | " + n.Name
		if len(n.Args) > 1 {
			s += "(" + r.join(n.Args[1:]) + ")"
		}
		return s

	default:
		panic(types.NewError(types.ErrRenderUnknownPool,
			fmt.Sprintf("function %q has unknown pool %q", n.Name, n.Pool), -1))
	}
}

func (r *Renderer) join(nodes []types.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = r.String(n)
	}
	return strings.Join(parts, ", ")
}

// element looks up an operator that the AST claims the grammar defines.
func (r *Renderer) element(op string) grammar.Element {
	el, ok := r.grammar.Lookup(op)
	if !ok {
		panic(types.NewError(types.ErrRenderUnknownOperator,
			fmt.Sprintf("unknown operator %q", op), -1).WithToken(op))
	}
	return el
}

// precedence returns the precedence of a binary expression's operator, or
// infinite when the grammar does not define it as a binary operator.
func (r *Renderer) precedence(op string) int {
	if b, ok := r.element(op).(grammar.BinaryOp); ok {
		return b.Precedence
	}
	return infinite
}

// bracketIfRequired renders child and wraps it in parentheses when the
// parent element binds at least as tightly. Parents other than binary
// operators, including a nil parent, have precedence 0.
//
// Equal precedence only forces parentheses on the right-hand side: every
// binary operator is left-associative, so a - b - c is already (a - b) - c
// while a - (b - c) must keep its grouping.
func (r *Renderer) bracketIfRequired(parent grammar.Element, child types.Node, rhs bool) string {
	parentPrecedence := 0
	if b, ok := parent.(grammar.BinaryOp); ok {
		parentPrecedence = b.Precedence
	}

	childPrecedence := infinite
	switch c := child.(type) {
	case *types.ConditionalExpression:
		childPrecedence = 0
	case *types.BinaryExpression:
		childPrecedence = r.precedence(c.Operator)
	}

	s := r.String(child)
	if (rhs && parentPrecedence >= childPrecedence) || (!rhs && parentPrecedence > childPrecedence) {
		return "(" + s + ")"
	}
	return s
}
