package jexltostring_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	jexltostring "github.com/chetbox/jexl-to-string"
	"github.com/chetbox/jexl-to-string/pkg/cache"
	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/types"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + (2 * 3)", "1 + 2 * 3"},
		{"(a + b) + (c * d)", "a + b + c * d"},
		{"foo  [ .bar == 'x' ]", `foo[.bar == "x"]`},
		{"a ? (b ? c : d) : e", "a ? b ? c : d : e"},
		{"{a:1,b:[2,3]}", "{ a: 1, b: [2, 3] }"},
		{"x|upper|split(',')", `x | upper | split(",")`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := jexltostring.Format(tt.input)
			if err != nil {
				t.Fatalf("Format(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	_, err := jexltostring.Format("a +")
	var terr *types.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *types.Error, got %v", err)
	}
	if terr.Code != types.ErrUnexpectedEnd {
		t.Errorf("error code = %s, want %s", terr.Code, types.ErrUnexpectedEnd)
	}
}

func TestMustFormat(t *testing.T) {
	if got := jexltostring.MustFormat("a&&b"); got != "a && b" {
		t.Errorf("MustFormat() = %q", got)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustFormat did not panic on invalid input")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "MustFormat") && !strings.Contains(msg, "Format(") {
			t.Errorf("unexpected panic value %v", r)
		}
	}()
	jexltostring.MustFormat("(")
}

func TestStringAndRender(t *testing.T) {
	g := grammar.Default()
	node := &types.BinaryExpression{
		Operator: "-",
		Left:     &types.Identifier{Value: "a"},
		Right: &types.BinaryExpression{
			Operator: "-",
			Left:     &types.Identifier{Value: "b"},
			Right:    &types.Identifier{Value: "c"},
		},
	}

	if got := jexltostring.String(g, node); got != "a - (b - c)" {
		t.Errorf("String() = %q", got)
	}

	bad := &types.BinaryExpression{Operator: "<>", Left: node, Right: node}
	if _, err := jexltostring.Render(g, bad); err == nil {
		t.Error("Render() with unknown operator returned no error")
	}
}

func TestFormatterGrammar(t *testing.T) {
	g, err := grammar.FromDefinition(grammar.Definition{Binary: map[string]int{"??": 5}})
	if err != nil {
		t.Fatal(err)
	}
	f := jexltostring.New(jexltostring.WithGrammar(g))

	got, err := f.Format("(a ?? b) ?? (c ?? d)")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a ?? b ?? (c ?? d)" {
		t.Errorf("Format() = %q", got)
	}
	if f.Grammar() != g {
		t.Error("Grammar() did not return the configured grammar")
	}

	if _, err := jexltostring.Format("a ?? b"); err == nil {
		t.Error("default grammar accepted ??")
	}
}

func TestFormatterCaching(t *testing.T) {
	if jexltostring.New().Cache() != nil {
		t.Fatal("cache enabled by default")
	}

	f := jexltostring.New(jexltostring.WithCaching(true), jexltostring.WithCacheSize(2))
	c := f.Cache()
	if c == nil {
		t.Fatal("WithCaching(true) did not create a cache")
	}
	if c.Capacity() != 2 {
		t.Errorf("cache capacity = %d, want 2", c.Capacity())
	}

	for _, src := range []string{"a+b", "a+b", "c*d", "(", "e-f"} {
		_, _ = f.Format(src)
	}
	if c.Len() != 2 {
		t.Errorf("cache holds %d entries, want 2", c.Len())
	}
	if _, ok := c.Get(f.CacheKey("(")); ok {
		t.Error("errors must not be cached")
	}
	if _, ok := c.Get(f.CacheKey("a+b")); ok {
		t.Error(`expected "a+b" to be evicted`)
	}
	if got, ok := c.Get(f.CacheKey("e-f")); !ok || got != "e - f" {
		t.Errorf(`cached "e-f" = %q, %v; want "e - f", true`, got, ok)
	}

	// A cached value is returned as is.
	c.Set(f.CacheKey("x"), "cached")
	if got, _ := f.Format("x"); got != "cached" {
		t.Errorf("Format() bypassed the cache: %q", got)
	}
}

func TestFormatterSharedCache(t *testing.T) {
	shared := cache.New[string](8)
	f1 := jexltostring.New(jexltostring.WithCache(shared))
	f2 := jexltostring.New(jexltostring.WithCache(shared))

	if _, err := f1.Format("a  ==  b"); err != nil {
		t.Fatal(err)
	}
	if f2.Cache() != shared || shared.Len() != 1 {
		t.Fatalf("expected both formatters to use the shared cache")
	}
}

func TestFormatterSharedCacheAcrossGrammars(t *testing.T) {
	shared := cache.New[string](8)
	def := jexltostring.New(jexltostring.WithCache(shared))

	// Same symbols, but + now binds tighter than *.
	swapped, err := grammar.FromDefinition(grammar.Definition{
		Binary: map[string]int{"+": 45},
	})
	if err != nil {
		t.Fatalf("FromDefinition() error = %v", err)
	}
	custom := jexltostring.New(jexltostring.WithCache(shared), jexltostring.WithGrammar(swapped))

	const src = "(a+b)*c"
	got, err := def.Format(src)
	if err != nil || got != "(a + b) * c" {
		t.Fatalf("default Format() = %q, %v", got, err)
	}
	got, err = custom.Format(src)
	if err != nil || got != "a + b * c" {
		t.Errorf("custom Format() = %q, %v; want %q", got, err, "a + b * c")
	}
	if shared.Len() != 2 {
		t.Errorf("shared cache holds %d entries, want 2", shared.Len())
	}
	if def.CacheKey(src) == custom.CacheKey(src) {
		t.Error("formatters with different grammars share a cache key")
	}

	// An equivalent grammar built separately reuses the default entries.
	rebuilt, err := grammar.FromDefinition(grammar.Default().Definition())
	if err != nil {
		t.Fatalf("FromDefinition() error = %v", err)
	}
	same := jexltostring.New(jexltostring.WithCache(shared), jexltostring.WithGrammar(rebuilt))
	if same.CacheKey(src) != def.CacheKey(src) {
		t.Error("equivalent grammars have different cache keys")
	}
}

func TestFormatterLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := jexltostring.New(jexltostring.WithLogger(logger), jexltostring.WithCaching(true))

	_, _ = f.Format("a+b")
	_, _ = f.Format("a+b")

	out := buf.String()
	for _, want := range []string{"cache miss", "formatted expression", "cache hit", "kind=BinaryExpression", `result="a + b"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatterMaxDepth(t *testing.T) {
	f := jexltostring.New(jexltostring.WithMaxDepth(2))
	_, err := f.Format("((a))")
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrMaxDepth {
		t.Fatalf("expected %s, got %v", types.ErrMaxDepth, err)
	}
}

func TestFormatAll(t *testing.T) {
	f := jexltostring.New()
	got, err := f.FormatAll([]string{"a+b", "(", "c  ?  d : e"})

	if diff := cmp.Diff([]string{"a + b", "", "c ? d : e"}, got); diff != "" {
		t.Errorf("FormatAll() mismatch (-want +got):\n%s", diff)
	}
	if err == nil {
		t.Fatal("FormatAll() returned no error for invalid input")
	}
	if !strings.Contains(err.Error(), "expression 1:") {
		t.Errorf("error %q does not name the failing index", err)
	}
	var terr *types.Error
	if !errors.As(err, &terr) {
		t.Errorf("joined error does not wrap *types.Error: %v", err)
	}

	if _, err := f.FormatAll([]string{"a", "b"}); err != nil {
		t.Errorf("FormatAll() of valid input: %v", err)
	}
}

func TestCheck(t *testing.T) {
	f := jexltostring.New()

	tests := []struct {
		input     string
		canonical bool
		formatted string
	}{
		{"a + b", true, "a + b"},
		{"a+b", false, "a + b"},
		{`"x"`, true, `"x"`},
		{"'x'", false, `"x"`},
		{"(a - b) - c", false, "a - b - c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			canonical, formatted, err := f.Check(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if canonical != tt.canonical || formatted != tt.formatted {
				t.Errorf("Check(%q) = %v, %q; want %v, %q",
					tt.input, canonical, formatted, tt.canonical, tt.formatted)
			}
		})
	}

	if _, _, err := f.Check("a["); err == nil {
		t.Error("Check() of invalid input returned no error")
	}
}

func TestVersion(t *testing.T) {
	if v := jexltostring.Version(); !strings.HasPrefix(v, "v") {
		t.Errorf("Version() = %q", v)
	}
}
