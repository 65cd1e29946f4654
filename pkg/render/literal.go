package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chetbox/jexl-to-string/pkg/types"
)

const hexDigits = "0123456789abcdef"

// formatLiteral returns the canonical source form of a literal value.
func formatLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return quoteString(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case int:
		return formatNumber(float64(v))
	case int8:
		return formatNumber(float64(v))
	case int16:
		return formatNumber(float64(v))
	case int32:
		return formatNumber(float64(v))
	case int64:
		return formatNumber(float64(v))
	case uint:
		return formatNumber(float64(v))
	case uint8:
		return formatNumber(float64(v))
	case uint16:
		return formatNumber(float64(v))
	case uint32:
		return formatNumber(float64(v))
	case uint64:
		return formatNumber(float64(v))
	default:
		panic(types.NewError(types.ErrRenderLiteralType,
			fmt.Sprintf("unsupported literal type %T", v), -1))
	}
}

// formatNumber writes the shortest decimal that reads back as the same
// float64. Exponents are never used: JEXL has no syntax for them, so large
// integers come out with their low-order digits zeroed.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(types.NewError(types.ErrRenderNonFinite,
			fmt.Sprintf("cannot render non-finite number %v", f), -1))
	}
	if f == 0 {
		// -0 has no source form distinct from 0.
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quoteString double-quotes s using JSON escapes. Unlike encoding/json it
// leaves <, > and & alone.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				b.WriteString("\ufffd")
			} else {
				b.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
	return b.String()
}
