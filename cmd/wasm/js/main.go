//go:build js && wasm

// Command jexlfmt-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `jexlfmt` object with the following API:
//
//	jexlfmt.version()                  → string
//	jexlfmt.format(expression)         → string   (throws on error)
//	jexlfmt.check(expression)          → boolean  (throws on error)
//	jexlfmt.withGrammar(yaml)          → { format(expression), check(expression) }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o jexlfmt.wasm ./cmd/wasm/js/
//
// Usage in browser:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go()
//	  WebAssembly.instantiateStreaming(fetch('jexlfmt.wasm'), go.importObject)
//	    .then(r => { go.run(r.instance); console.log(jexlfmt.format('1 + (2 * 3)')) })
//	</script>
package main

import (
	"fmt"
	"syscall/js"

	jexltostring "github.com/chetbox/jexl-to-string"
	"github.com/chetbox/jexl-to-string/pkg/grammar"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

// api builds the format/check functions of f.
func api(name string, f *jexltostring.Formatter) map[string]interface{} {
	return map[string]interface{}{
		"format": js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
			if len(args) < 1 {
				jsThrow(name + ".format requires 1 argument: expression (string)")
			}
			s, err := f.Format(args[0].String())
			if err != nil {
				jsThrow(fmt.Sprintf("%s.format: %v", name, err))
			}
			return s
		}),
		"check": js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
			if len(args) < 1 {
				jsThrow(name + ".check requires 1 argument: expression (string)")
			}
			canonical, _, err := f.Check(args[0].String())
			if err != nil {
				jsThrow(fmt.Sprintf("%s.check: %v", name, err))
			}
			return canonical
		}),
	}
}

// jsWithGrammar implements jexlfmt.withGrammar(yaml) → { format, check }.
func jsWithGrammar(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("jexlfmt.withGrammar requires 1 argument: grammar (YAML string)")
	}
	g, err := grammar.Parse([]byte(args[0].String()))
	if err != nil {
		jsThrow(fmt.Sprintf("jexlfmt.withGrammar: %v", err))
	}
	return js.ValueOf(api("formatter", jexltostring.New(jexltostring.WithGrammar(g))))
}

func main() {
	exports := api("jexlfmt", jexltostring.New(jexltostring.WithCaching(true)))
	exports["withGrammar"] = js.FuncOf(jsWithGrammar)
	exports["version"] = js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
		return jexltostring.Version()
	})
	js.Global().Set("jexlfmt", js.ValueOf(exports))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
