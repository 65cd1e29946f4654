// Package grammar describes the operators of a JEXL dialect.
//
// A Grammar maps operator symbols to Elements. Only binary operators carry a
// precedence; unary operators and punctuation are recorded so that the lexer
// can recognise them and so that lookups of unknown symbols can be told
// apart from symbols that are simply not binary.
//
// # Example
//
//	g := grammar.Default()
//	p, ok := g.Precedence("*") // 40, true
package grammar

import (
	"cmp"
	"hash/fnv"
	"slices"
	"strconv"
)

// Element is the grammar entry for a single symbol.
// Implementations are BinaryOp, UnaryOp and Other.
type Element interface {
	element()
}

// BinaryOp is an infix operator. Higher precedence binds tighter.
// Every binary operator is left-associative.
type BinaryOp struct {
	Precedence int
}

// UnaryOp is a prefix operator. Unary operators bind tighter than every
// binary operator.
type UnaryOp struct{}

// Other is punctuation: brackets, the dot, the pipe and the like.
type Other struct {
	Kind string
}

func (BinaryOp) element() {}
func (UnaryOp) element()  {}
func (Other) element()    {}

// Grammar is an immutable operator table. It is safe for concurrent use.
type Grammar struct {
	elements    map[string]Element
	binary      []string
	unary       []string
	fingerprint string
}

// New creates a Grammar from the given elements. The map is copied.
func New(elements map[string]Element) *Grammar {
	g := &Grammar{elements: make(map[string]Element, len(elements))}
	for sym, el := range elements {
		g.elements[sym] = el
		switch el.(type) {
		case BinaryOp:
			g.binary = append(g.binary, sym)
		case UnaryOp:
			g.unary = append(g.unary, sym)
		}
	}
	slices.SortFunc(g.binary, longestFirst)
	slices.SortFunc(g.unary, longestFirst)
	g.fingerprint = g.computeFingerprint()
	return g
}

// Fingerprint identifies the operator table. Grammars with the same binary
// operators, precedences and unary operators share a fingerprint, whatever
// order or definition they were built from.
func (g *Grammar) Fingerprint() string {
	return g.fingerprint
}

func (g *Grammar) computeFingerprint() string {
	h := fnv.New64a()
	// g.binary and g.unary are already in a canonical order.
	for _, sym := range g.binary {
		h.Write([]byte("b\x00" + sym + "\x00" + strconv.Itoa(g.elements[sym].(BinaryOp).Precedence) + "\x00"))
	}
	for _, sym := range g.unary {
		h.Write([]byte("u\x00" + sym + "\x00"))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// longestFirst orders symbols so that a lexer trying them in order always
// prefers "//" over "/".
func longestFirst(a, b string) int {
	if c := cmp.Compare(len(b), len(a)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// Lookup returns the element registered for symbol.
func (g *Grammar) Lookup(symbol string) (Element, bool) {
	el, ok := g.elements[symbol]
	return el, ok
}

// Precedence returns the precedence of a binary operator. The boolean is
// false when symbol is unknown or is not a binary operator.
func (g *Grammar) Precedence(symbol string) (int, bool) {
	if op, ok := g.elements[symbol].(BinaryOp); ok {
		return op.Precedence, true
	}
	return 0, false
}

// IsBinary reports whether symbol is a binary operator.
func (g *Grammar) IsBinary(symbol string) bool {
	_, ok := g.elements[symbol].(BinaryOp)
	return ok
}

// IsUnary reports whether symbol is a unary operator.
func (g *Grammar) IsUnary(symbol string) bool {
	_, ok := g.elements[symbol].(UnaryOp)
	return ok
}

// Operators returns every registered symbol in lexical order.
func (g *Grammar) Operators() []string {
	syms := make([]string, 0, len(g.elements))
	for sym := range g.elements {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}

// BinaryOperators returns the binary operator symbols, longest first.
func (g *Grammar) BinaryOperators() []string {
	return slices.Clone(g.binary)
}

// UnaryOperators returns the unary operator symbols, longest first.
func (g *Grammar) UnaryOperators() []string {
	return slices.Clone(g.unary)
}
