package grammar

import (
	"fmt"
	"os"
	"slices"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/chetbox/jexl-to-string/pkg/types"
)

// Base grammars a Definition can extend.
const (
	ExtendsDefault = "default"
	ExtendsNone    = "none"
)

// Definition is the serialisable form of a Grammar.
//
//	extends: default
//	binary:
//	  "??": 5
//	unary: ["~"]
//
// Punctuation is implicit and cannot be redefined.
type Definition struct {
	// Extends names the base grammar: "default" (the default when empty)
	// or "none" for punctuation only.
	Extends string `yaml:"extends,omitempty"`
	// Binary maps binary operator symbols to their precedence.
	Binary map[string]int `yaml:"binary,omitempty"`
	// Unary lists unary operator symbols.
	Unary []string `yaml:"unary,omitempty"`
}

// LoadFile reads a YAML grammar definition from path.
func LoadFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file %q: %w", path, err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar file %q: %w", path, err)
	}
	return g, nil
}

// Parse decodes a YAML grammar definition.
func Parse(data []byte) (*Grammar, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, types.NewError(types.ErrGrammarInvalid, "invalid grammar YAML", -1).WithCause(err)
	}
	return FromDefinition(def)
}

// FromDefinition validates def and builds the Grammar it describes.
func FromDefinition(def Definition) (*Grammar, error) {
	elements := merge(punctuation)

	switch def.Extends {
	case "", ExtendsDefault:
		for sym, el := range defaultOperators {
			elements[sym] = el
		}
	case ExtendsNone:
	default:
		return nil, types.NewError(types.ErrGrammarExtends,
			fmt.Sprintf("unknown base grammar %q", def.Extends), -1)
	}

	if err := validate(def); err != nil {
		return nil, err
	}

	for sym, prec := range def.Binary {
		elements[sym] = BinaryOp{Precedence: prec}
	}
	for _, sym := range def.Unary {
		elements[sym] = UnaryOp{}
	}

	return New(elements), nil
}

func validate(def Definition) error {
	for sym, prec := range def.Binary {
		if err := validateSymbol(sym); err != nil {
			return err
		}
		if prec <= 0 {
			return types.NewError(types.ErrGrammarInvalid,
				fmt.Sprintf("operator %q: precedence must be positive, got %d", sym, prec), -1)
		}
		if slices.Contains(def.Unary, sym) {
			return types.NewError(types.ErrGrammarConflict,
				fmt.Sprintf("operator %q is declared both binary and unary", sym), -1)
		}
	}
	for _, sym := range def.Unary {
		if err := validateSymbol(sym); err != nil {
			return err
		}
	}
	return nil
}

// validateSymbol accepts word operators such as "in" and symbolic operators
// made only of punctuation characters such as "//".
func validateSymbol(sym string) error {
	if sym == "" {
		return types.NewError(types.ErrGrammarInvalid, "empty operator symbol", -1)
	}
	if IsPunctuation(sym) {
		return types.NewError(types.ErrGrammarConflict,
			fmt.Sprintf("%q is reserved punctuation", sym), -1)
	}
	if IsWord(sym) {
		if sym == "true" || sym == "false" {
			return types.NewError(types.ErrGrammarConflict,
				fmt.Sprintf("%q is a reserved literal", sym), -1)
		}
		return nil
	}
	for _, r := range sym {
		if r == '_' || r == '$' || r == '"' || r == '\'' || r == '`' ||
			unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return types.NewError(types.ErrGrammarInvalid,
				fmt.Sprintf("operator %q mixes word and symbol characters", sym), -1)
		}
	}
	return nil
}

// IsWord reports whether symbol is shaped like an identifier.
func IsWord(symbol string) bool {
	for i, r := range symbol {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return symbol != ""
}

// Definition returns the serialisable form of g. The result never extends
// another grammar, so it reproduces g exactly.
func (g *Grammar) Definition() Definition {
	def := Definition{Extends: ExtendsNone, Binary: make(map[string]int, len(g.binary))}
	for _, sym := range g.binary {
		def.Binary[sym] = g.elements[sym].(BinaryOp).Precedence
	}
	def.Unary = slices.Clone(g.unary)
	slices.Sort(def.Unary)
	return def
}

// MarshalYAML implements yaml.Marshaler.
func (g *Grammar) MarshalYAML() (any, error) {
	return g.Definition(), nil
}
