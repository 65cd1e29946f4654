// Package wasihost runs the WASI build of the formatter with wazero.
//
// The module is the wasip1 build of cmd/wasm/wasi. Each call instantiates
// it afresh with the request on stdin and reads the response from stdout,
// so a Host can serve concurrent calls.
//
// # Example
//
//	h, err := wasihost.Load(ctx, "jexlfmt.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close(ctx)
//	s, err := h.Format(ctx, "1 + (2 * 3)") // "1 + 2 * 3"
package wasihost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

type request struct {
	Expression string `json:"expression"`
	Grammar    string `json:"grammar,omitempty"`
}

type response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// FormatError is an error reported by the guest module, such as a syntax
// error in the expression.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// Options configures a Host.
type Options struct {
	// Grammar is a YAML grammar definition sent with every request.
	Grammar string
	// Logger for structured logging.
	Logger *slog.Logger
}

// Option configures a Host.
type Option func(*Options)

// WithGrammar sends a YAML grammar definition with every request.
func WithGrammar(yaml string) Option {
	return func(opts *Options) {
		opts.Grammar = yaml
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Host holds a compiled formatter module.
type Host struct {
	opts     Options
	logger   *slog.Logger
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// Load reads and compiles the module at path.
func Load(ctx context.Context, path string, opts ...Option) (*Host, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %q: %w", path, err)
	}
	return New(ctx, wasm, opts...)
}

// New compiles the module binary wasm.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Host, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	r := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	return &Host{
		opts:     options,
		logger:   options.Logger,
		runtime:  r,
		compiled: compiled,
	}, nil
}

// Format runs the module on expression and returns the formatted text.
// Errors reported by the module are returned as *FormatError.
func (h *Host) Format(ctx context.Context, expression string) (string, error) {
	in, err := json.Marshal(request{Expression: expression, Grammar: h.opts.Grammar})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName(""). // anonymous, so instances never clash
		WithArgs("jexlfmt").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := h.runtime.InstantiateModule(ctx, h.compiled, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}

	var exitErr *sys.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		h.logger.Debug("module exited",
			slog.Int("exit_code", int(exitErr.ExitCode())),
			slog.String("expression", expression),
		)
	default:
		return "", fmt.Errorf("failed to run module: %w", err)
	}

	if stderr.Len() > 0 {
		h.logger.Debug("module stderr", slog.String("output", strings.TrimSpace(stderr.String())))
	}

	if stdout.Len() == 0 {
		return "", errors.New("module wrote no response")
	}
	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != "" {
		return "", &FormatError{Message: resp.Error}
	}
	return resp.Result, nil
}

// Close releases the runtime and every module compiled by it.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}
