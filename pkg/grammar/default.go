package grammar

// Precedence levels of the default JEXL grammar.
const (
	PrecedenceLogical        = 10 // && ||
	PrecedenceComparison     = 20 // == != < <= > >= in
	PrecedenceAdditive       = 30 // + -
	PrecedenceMultiplicative = 40 // * / // %
	PrecedenceExponent       = 50 // ^
)

// punctuation is registered in every grammar; it cannot be redefined.
var punctuation = map[string]Element{
	".": Other{Kind: "dot"},
	"[": Other{Kind: "openBracket"},
	"]": Other{Kind: "closeBracket"},
	"|": Other{Kind: "pipe"},
	"{": Other{Kind: "openCurl"},
	"}": Other{Kind: "closeCurl"},
	":": Other{Kind: "colon"},
	",": Other{Kind: "comma"},
	"(": Other{Kind: "openParen"},
	")": Other{Kind: "closeParen"},
	"?": Other{Kind: "question"},
}

var defaultOperators = map[string]Element{
	"+":  BinaryOp{Precedence: PrecedenceAdditive},
	"-":  BinaryOp{Precedence: PrecedenceAdditive},
	"*":  BinaryOp{Precedence: PrecedenceMultiplicative},
	"/":  BinaryOp{Precedence: PrecedenceMultiplicative},
	"//": BinaryOp{Precedence: PrecedenceMultiplicative},
	"%":  BinaryOp{Precedence: PrecedenceMultiplicative},
	"^":  BinaryOp{Precedence: PrecedenceExponent},
	"==": BinaryOp{Precedence: PrecedenceComparison},
	"!=": BinaryOp{Precedence: PrecedenceComparison},
	">":  BinaryOp{Precedence: PrecedenceComparison},
	">=": BinaryOp{Precedence: PrecedenceComparison},
	"<":  BinaryOp{Precedence: PrecedenceComparison},
	"<=": BinaryOp{Precedence: PrecedenceComparison},
	"&&": BinaryOp{Precedence: PrecedenceLogical},
	"||": BinaryOp{Precedence: PrecedenceLogical},
	"in": BinaryOp{Precedence: PrecedenceComparison},
	"!":  UnaryOp{},
}

var defaultGrammar = New(merge(punctuation, defaultOperators))

// Default returns the standard JEXL grammar. The returned value is shared
// and must not be modified; Grammar exposes no mutators.
func Default() *Grammar {
	return defaultGrammar
}

// IsPunctuation reports whether symbol is reserved punctuation.
func IsPunctuation(symbol string) bool {
	_, ok := punctuation[symbol]
	return ok
}

func merge(maps ...map[string]Element) map[string]Element {
	out := make(map[string]Element)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
