package render

import "strings"

// IsBareIdentifier reports whether key can be written as .key: a letter or
// underscore followed by letters, digits or underscores (ASCII only).
func IsBareIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// EscapeKeys appends a property access for each key to base, in order.
// Bare identifiers use dot syntax (.key); any other key uses bracket syntax
// (["key"]) with double quotes escaped.
//
// Backslashes in keys are not escaped, so a key containing one does not
// survive a round trip.
func EscapeKeys(base string, keys ...string) string {
	if len(keys) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	for _, key := range keys {
		if IsBareIdentifier(key) {
			b.WriteByte('.')
			b.WriteString(key)
			continue
		}
		b.WriteString(`["`)
		b.WriteString(strings.ReplaceAll(key, `"`, `\"`))
		b.WriteString(`"]`)
	}
	return b.String()
}
