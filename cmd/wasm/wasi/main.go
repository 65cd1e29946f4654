//go:build wasip1

// Command jexlfmt-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "expression": "<jexl>", "grammar": "<optional YAML grammar>" }
//	stdout: { "result": "<formatted jexl>" }   on success
//	        { "error":  "<message>"        }   on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o jexlfmt.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"1 + (2 * 3)"}' | wasmtime jexlfmt.wasm
//
// From Go, package wasihost runs the module with wazero.
package main

import (
	"encoding/json"
	"os"

	jexltostring "github.com/chetbox/jexl-to-string"
	"github.com/chetbox/jexl-to-string/pkg/grammar"
)

type request struct {
	Expression string `json:"expression"`
	Grammar    string `json:"grammar,omitempty"`
}

type response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var opts []jexltostring.Option
	if req.Grammar != "" {
		g, err := grammar.Parse([]byte(req.Grammar))
		if err != nil {
			writeResponse(response{Error: err.Error()}, 1)
		}
		opts = append(opts, jexltostring.WithGrammar(g))
	}

	result, err := jexltostring.Format(req.Expression, opts...)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	writeResponse(response{Result: result}, 0)
}
