package grammar_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

func TestDefaultPrecedence(t *testing.T) {
	g := grammar.Default()

	tests := []struct {
		symbol string
		want   int
	}{
		{"||", 10}, {"&&", 10},
		{"==", 20}, {"!=", 20}, {"<", 20}, {"<=", 20}, {">", 20}, {">=", 20}, {"in", 20},
		{"+", 30}, {"-", 30},
		{"*", 40}, {"/", 40}, {"//", 40}, {"%", 40},
		{"^", 50},
	}

	for _, tt := range tests {
		got, ok := g.Precedence(tt.symbol)
		if !ok {
			t.Errorf("Precedence(%q) not found", tt.symbol)
			continue
		}
		if got != tt.want {
			t.Errorf("Precedence(%q) = %d, want %d", tt.symbol, got, tt.want)
		}
	}
}

func TestDefaultLookup(t *testing.T) {
	g := grammar.Default()

	tests := []struct {
		symbol string
		want   grammar.Element
		found  bool
	}{
		{"+", grammar.BinaryOp{Precedence: 30}, true},
		{"!", grammar.UnaryOp{}, true},
		{".", grammar.Other{Kind: "dot"}, true},
		{"?", grammar.Other{Kind: "question"}, true},
		{"<>", nil, false},
		{"and", nil, false},
	}

	for _, tt := range tests {
		got, ok := g.Lookup(tt.symbol)
		if ok != tt.found {
			t.Errorf("Lookup(%q) found = %v, want %v", tt.symbol, ok, tt.found)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", tt.symbol, diff)
		}
	}

	if _, ok := g.Precedence("!"); ok {
		t.Error("Precedence(\"!\") reported a unary operator as binary")
	}
	if !g.IsUnary("!") || g.IsBinary("!") {
		t.Error("\"!\" should be unary only")
	}
	if !g.IsBinary("in") || g.IsUnary("in") {
		t.Error("\"in\" should be binary only")
	}
}

func TestOperatorOrder(t *testing.T) {
	g := grammar.Default()

	bin := g.BinaryOperators()
	for i := 1; i < len(bin); i++ {
		if len(bin[i-1]) < len(bin[i]) {
			t.Fatalf("BinaryOperators() not longest first: %q before %q", bin[i-1], bin[i])
		}
	}

	// The returned slice is a copy.
	bin[0] = "mutated"
	if g.BinaryOperators()[0] == "mutated" {
		t.Error("BinaryOperators() exposes internal state")
	}

	if diff := cmp.Diff([]string{"!"}, g.UnaryOperators()); diff != "" {
		t.Errorf("UnaryOperators() mismatch (-want +got):\n%s", diff)
	}

	ops := g.Operators()
	if len(ops) != 28 {
		t.Errorf("Operators() returned %d symbols, want 28: %q", len(ops), ops)
	}
}

func TestFromDefinition(t *testing.T) {
	g, err := grammar.FromDefinition(grammar.Definition{
		Binary: map[string]int{"??": 5, "+": 35},
		Unary:  []string{"~"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if p, _ := g.Precedence("??"); p != 5 {
		t.Errorf("Precedence(\"??\") = %d, want 5", p)
	}
	if p, _ := g.Precedence("+"); p != 35 {
		t.Errorf("Precedence(\"+\") = %d, want overridden 35", p)
	}
	if p, _ := g.Precedence("*"); p != 40 {
		t.Errorf("Precedence(\"*\") = %d, want inherited 40", p)
	}
	if !g.IsUnary("~") || !g.IsUnary("!") {
		t.Error("expected both ~ and ! to be unary")
	}

	// The shared default grammar is untouched.
	if p, _ := grammar.Default().Precedence("+"); p != 30 {
		t.Errorf("default Precedence(\"+\") = %d after extension, want 30", p)
	}
}

func TestFromDefinitionNone(t *testing.T) {
	g, err := grammar.FromDefinition(grammar.Definition{
		Extends: grammar.ExtendsNone,
		Binary:  map[string]int{"and": 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.IsBinary("+") {
		t.Error("grammar extending none should not define +")
	}
	if _, ok := g.Lookup("["); !ok {
		t.Error("punctuation missing from grammar extending none")
	}
}

func TestFromDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		def  grammar.Definition
		code types.ErrorCode
	}{
		{"unknown base", grammar.Definition{Extends: "jexl2"}, types.ErrGrammarExtends},
		{"zero precedence", grammar.Definition{Binary: map[string]int{"??": 0}}, types.ErrGrammarInvalid},
		{"negative precedence", grammar.Definition{Binary: map[string]int{"??": -1}}, types.ErrGrammarInvalid},
		{"empty symbol", grammar.Definition{Unary: []string{""}}, types.ErrGrammarInvalid},
		{"punctuation", grammar.Definition{Binary: map[string]int{"|": 5}}, types.ErrGrammarConflict},
		{"literal", grammar.Definition{Unary: []string{"true"}}, types.ErrGrammarConflict},
		{"binary and unary", grammar.Definition{Binary: map[string]int{"~": 5}, Unary: []string{"~"}}, types.ErrGrammarConflict},
		{"mixed characters", grammar.Definition{Binary: map[string]int{"a+": 5}}, types.ErrGrammarInvalid},
		{"space in symbol", grammar.Definition{Binary: map[string]int{"< >": 5}}, types.ErrGrammarInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grammar.FromDefinition(tt.def)
			if err == nil {
				t.Fatal("expected error")
			}
			var gerr *types.Error
			if !errors.As(err, &gerr) {
				t.Fatalf("error %v is not a *types.Error", err)
			}
			if gerr.Code != tt.code {
				t.Errorf("error code = %s, want %s", gerr.Code, tt.code)
			}
		})
	}
}

func TestIsWord(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"in", true},
		{"not", true},
		{"_x", true},
		{"$x", true},
		{"x1", true},
		{"1x", false},
		{"", false},
		{"!", false},
		{"//", false},
	}

	for _, tt := range tests {
		if got := grammar.IsWord(tt.symbol); got != tt.want {
			t.Errorf("IsWord(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
extends: default
binary:
  "??": 5
  and: 10
unary:
  - not
`)
	g, err := grammar.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := g.Precedence("and"); p != 10 {
		t.Errorf("Precedence(\"and\") = %d, want 10", p)
	}
	if !g.IsUnary("not") {
		t.Error("expected not to be unary")
	}

	_, err = grammar.Parse([]byte("binary: [1, 2"))
	var gerr *types.Error
	if !errors.As(err, &gerr) || gerr.Code != types.ErrGrammarInvalid {
		t.Fatalf("Parse(invalid YAML) error = %v, want %s", err, types.ErrGrammarInvalid)
	}
	if errors.Unwrap(gerr) == nil {
		t.Error("invalid YAML error should wrap the decoder error")
	}
}

func TestDefinitionRoundTrip(t *testing.T) {
	g, err := grammar.FromDefinition(grammar.Definition{
		Binary: map[string]int{"??": 5},
		Unary:  []string{"not"},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := yaml.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}

	again, err := grammar.Parse(data)
	if err != nil {
		t.Fatalf("Parse(%s) error: %v", data, err)
	}
	if diff := cmp.Diff(g.Definition(), again.Definition()); diff != "" {
		t.Errorf("definition changed after round trip (-want +got):\n%s", diff)
	}
	if again.IsBinary("??") != true || again.IsUnary("not") != true || !again.IsBinary("+") {
		t.Error("round-tripped grammar lost operators")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grammar.yaml")
	if err := os.WriteFile(path, []byte("binary:\n  \"??\": 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := grammar.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsBinary("??") {
		t.Error("expected ?? to be binary")
	}

	_, err = grammar.LoadFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestFingerprint(t *testing.T) {
	def := grammar.Default()
	rebuilt, err := grammar.FromDefinition(def.Definition())
	if err != nil {
		t.Fatalf("FromDefinition() error = %v", err)
	}
	if def.Fingerprint() == "" {
		t.Fatal("empty fingerprint")
	}
	if rebuilt.Fingerprint() != def.Fingerprint() {
		t.Errorf("equivalent grammars: %s != %s", rebuilt.Fingerprint(), def.Fingerprint())
	}

	tests := []struct {
		name string
		def  grammar.Definition
	}{
		{"changed precedence", grammar.Definition{Binary: map[string]int{"+": 45}}},
		{"extra binary operator", grammar.Definition{Binary: map[string]int{"??": 5}}},
		{"extra unary operator", grammar.Definition{Unary: []string{"~"}}},
		{"punctuation only", grammar.Definition{Extends: grammar.ExtendsNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := grammar.FromDefinition(tt.def)
			if err != nil {
				t.Fatalf("FromDefinition() error = %v", err)
			}
			if g.Fingerprint() == def.Fingerprint() {
				t.Errorf("fingerprint matches the default grammar")
			}
		})
	}
}
