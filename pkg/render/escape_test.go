package render_test

import (
	"testing"

	"github.com/chetbox/jexl-to-string/pkg/render"
)

func TestEscapeKeys(t *testing.T) {
	tests := []struct {
		name string
		base string
		keys []string
		want string
	}{
		{"no keys", "foo", nil, "foo"},
		{"no keys empty base", "", nil, ""},
		{"single bare key", "foo", []string{"bar"}, "foo.bar"},
		{"chain of bare keys", "foo", []string{"bar", "baz"}, "foo.bar.baz"},
		{"underscore start", "a", []string{"_b"}, "a._b"},
		{"digits after start", "a", []string{"b12"}, "a.b12"},
		{"space in key", "a", []string{"b c"}, `a["b c"]`},
		{"leading digit", "a", []string{"1b"}, `a["1b"]`},
		{"empty key", "a", []string{""}, `a[""]`},
		{"hyphen", "a", []string{"content-type"}, `a["content-type"]`},
		{"dollar", "a", []string{"$ref"}, `a["$ref"]`},
		{"quote is escaped", "a", []string{`say "hi"`}, `a["say \"hi\""]`},
		{"backslash is kept", "a", []string{`c:\dir`}, `a["c:\dir"]`},
		{"non-ascii letter", "a", []string{"é"}, `a["é"]`},
		{"mixed", "a", []string{"b", "c d", "e"}, `a.b["c d"].e`},
		{"empty base bare key", "", []string{"foo"}, ".foo"},
		{"empty base bracket key", "", []string{"foo bar"}, `["foo bar"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render.EscapeKeys(tt.base, tt.keys...); got != tt.want {
				t.Errorf("EscapeKeys(%q, %q) = %q, want %q", tt.base, tt.keys, got, tt.want)
			}
		})
	}
}

func TestIsBareIdentifier(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"_", true},
		{"foo_bar9", true},
		{"FOO", true},
		{"", false},
		{"9a", false},
		{"a.b", false},
		{"a b", false},
		{"$a", false},
		{"ä", false},
	}

	for _, tt := range tests {
		if got := render.IsBareIdentifier(tt.key); got != tt.want {
			t.Errorf("IsBareIdentifier(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
