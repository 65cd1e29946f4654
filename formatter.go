package jexltostring

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chetbox/jexl-to-string/pkg/cache"
	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/parser"
	"github.com/chetbox/jexl-to-string/pkg/render"
)

// Formatter parses and re-renders JEXL source text with a fixed grammar.
// It is safe for concurrent use.
type Formatter struct {
	opts     Options
	logger   *slog.Logger
	renderer *render.Renderer
	cache    *cache.Cache[string] // non-nil when Caching is enabled
}

// Options configures a Formatter.
type Options struct {
	// Grammar supplies operators and precedence. Defaults to grammar.Default().
	Grammar *grammar.Grammar
	// Caching enables caching of formatted output by source text.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached results.
	// Only used when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom result cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache[string]
	// MaxDepth limits parser recursion depth.
	MaxDepth int
	// Logger for structured logging.
	Logger *slog.Logger
}

// Option configures a Formatter.
type Option func(*Options)

// New creates a Formatter. Without options it formats with the default
// grammar and no cache.
func New(opts ...Option) *Formatter {
	options := Options{
		MaxDepth: 1000,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Grammar == nil {
		options.Grammar = grammar.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache[string]
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New[string](options.CacheSize)
	}

	return &Formatter{
		opts:     options,
		logger:   options.Logger,
		renderer: render.New(options.Grammar),
		cache:    c,
	}
}

// Format parses src and returns its canonical rendering. Parse errors are
// returned as *types.Error with the position of the offending token.
func (f *Formatter) Format(src string) (string, error) {
	if f.cache == nil {
		return f.format(src)
	}

	hit := true
	s, err := f.cache.GetOrCompute(f.CacheKey(src), func() (string, error) {
		hit = false
		f.logger.Debug("cache miss", slog.String("expression", src))
		return f.format(src)
	})
	if err != nil {
		return "", err
	}
	if hit {
		f.logger.Debug("cache hit", slog.String("expression", src))
	}
	return s, nil
}

// CacheKey returns the key under which Format caches the rendering of src.
// Keys include the grammar's fingerprint, so one cache can be shared by
// formatters with different grammars.
func (f *Formatter) CacheKey(src string) string {
	return f.opts.Grammar.Fingerprint() + "\x00" + src
}

func (f *Formatter) format(src string) (string, error) {
	expr, err := parser.Compile(src,
		parser.WithGrammar(f.opts.Grammar),
		parser.WithMaxDepth(f.opts.MaxDepth),
	)
	if err != nil {
		return "", err
	}

	s, err := f.renderer.Render(expr.AST())
	if err != nil {
		return "", err
	}

	f.logger.Debug("formatted expression",
		slog.String("expression", src),
		slog.String("kind", expr.AST().Kind().String()),
		slog.String("result", s),
	)
	return s, nil
}

// FormatAll formats every expression in srcs. The result has one entry per
// input; entries whose input failed to format are empty and their errors are
// joined, each prefixed with the input's index.
func (f *Formatter) FormatAll(srcs []string) ([]string, error) {
	out := make([]string, len(srcs))
	var errs []error
	for i, src := range srcs {
		s, err := f.Format(src)
		if err != nil {
			errs = append(errs, fmt.Errorf("expression %d: %w", i, err))
			continue
		}
		out[i] = s
	}
	return out, errors.Join(errs...)
}

// Check reports whether src is already in canonical form, along with the
// canonical rendering.
func (f *Formatter) Check(src string) (canonical bool, formatted string, err error) {
	formatted, err = f.Format(src)
	if err != nil {
		return false, "", err
	}
	return formatted == src, formatted, nil
}

// Grammar returns the grammar the formatter parses and renders with.
func (f *Formatter) Grammar() *grammar.Grammar {
	return f.opts.Grammar
}

// Cache returns the result cache, or nil when caching is disabled.
func (f *Formatter) Cache() *cache.Cache[string] {
	return f.cache
}

// WithGrammar sets the operator grammar.
func WithGrammar(g *grammar.Grammar) Option {
	return func(opts *Options) {
		opts.Grammar = g
	}
}

// WithCaching enables or disables result caching.
// When enabled, a default LRU cache of 256 entries is created.
func WithCaching(enabled bool) Option {
	return func(opts *Options) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the capacity of the cache created by WithCaching.
func WithCacheSize(size int) Option {
	return func(opts *Options) {
		opts.CacheSize = size
	}
}

// WithCache supplies a cache. It may be shared between formatters, including
// formatters with different grammars; see Formatter.CacheKey.
func WithCache(c *cache.Cache[string]) Option {
	return func(opts *Options) {
		opts.Cache = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}
