package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/inputguard/pkg/cache"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/markdown"
	"github.com/dmitrymomot/inputguard/pkg/pattern"
	"github.com/dmitrymomot/inputguard/pkg/sanitizer"
	"github.com/dmitrymomot/inputguard/pkg/structure"
	"github.com/dmitrymomot/inputguard/pkg/upload"
)

// Guard runs guarded operations. It is safe for concurrent use.
type Guard struct {
	log      *slog.Logger
	store    cache.Store
	limits   Limits
	limiter  *structure.Limiter
	markdown *markdown.Renderer
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the diagnostic logger. Internal failures are logged at
// ERROR, rejections at INFO and accepted requests at DEBUG.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithCache memoizes results in s.
func WithCache(s cache.Store) Option {
	return func(g *Guard) {
		if s != nil {
			g.store = s
		}
	}
}

// WithLimits sets the limits used when a Request carries none.
func WithLimits(l Limits) Option {
	return func(g *Guard) {
		g.limits = l
	}
}

// WithStructureLimiter replaces the StructuredParse limiter.
func WithStructureLimiter(l *structure.Limiter) Option {
	return func(g *Guard) {
		if l != nil {
			g.limiter = l
		}
	}
}

// WithMarkdownRenderer replaces the renderer used for Markdown input.
func WithMarkdownRenderer(r *markdown.Renderer) Option {
	return func(g *Guard) {
		if r != nil {
			g.markdown = r
		}
	}
}

// New returns a Guard with DefaultLimits and no memo cache.
func New(opts ...Option) *Guard {
	g := &Guard{
		log:      logger.Discard(),
		store:    cache.Noop{},
		limits:   DefaultLimits(),
		limiter:  structure.New(),
		markdown: markdown.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("guard"))
	return g
}

// Limits returns the guard's default limits.
func (g *Guard) Limits() Limits { return g.limits }

// Evaluate runs req through the checks for its kind, cheapest first, and
// returns an accepted or rejected Result. It never panics on input and never
// returns partial output with a rejection.
func (g *Guard) Evaluate(ctx context.Context, req Request) Result {
	limits := g.limits
	if req.Limits != nil {
		limits = *req.Limits
	}
	start := time.Now()

	memoize := req.Kind.memoized()
	var key cache.Key
	if memoize {
		key = memoKey(req, limits)
		if res, ok := g.recall(ctx, key, req.Kind); ok {
			g.report(ctx, req, res, time.Since(start), true)
			return res
		}
	}

	res := g.run(ctx, req, limits)
	if memoize && res.memoizable() {
		g.remember(ctx, key, res)
	}
	g.report(ctx, req, res, time.Since(start), false)
	return res
}

func (g *Guard) run(ctx context.Context, req Request, limits Limits) Result {
	var (
		out any
		err error
	)
	switch req.Kind {
	case PatternTest:
		out, err = g.testPattern(ctx, req, limits)
	case StructuredParse:
		out, err = g.parseStructured(req, limits)
	case MarkupRender:
		out, err = g.renderMarkup(req, limits)
	case FileIngest:
		out, err = ingestFile(req, limits)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}

	if err == nil {
		return accept(req.Kind, out)
	}
	if rej := classify(err); rej != nil {
		return reject(req.Kind, rej)
	}
	return g.fail(ctx, req.Kind, err)
}

func (g *Guard) testPattern(ctx context.Context, req Request, limits Limits) (any, error) {
	if err := checkSize(len(req.Payload), limits.maxSize); err != nil {
		return nil, err
	}
	return pattern.Run(ctx, pattern.Spec{
		Pattern:     req.Pattern,
		Flags:       req.Flags,
		Operation:   req.Operation,
		Replacement: req.Replacement,
		Text:        string(req.Payload),
		Timeout:     limits.timeout,
		MaxMatches:  limits.maxMatches,
	})
}

func (g *Guard) parseStructured(req Request, limits Limits) (any, error) {
	format, err := structure.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	return g.limiter.Check(req.Payload, format, limits.maxSize, limits.maxDepth)
}

func (g *Guard) renderMarkup(req Request, limits Limits) (any, error) {
	format, err := parseMarkupFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if err := checkSize(len(req.Payload), limits.maxSize); err != nil {
		return nil, err
	}

	markup := string(req.Payload)
	if format == FormatMarkdown {
		if markup, err = g.markdown.Render(req.Payload); err != nil {
			return nil, err
		}
	}
	return sanitizer.Sanitize(markup, limits.policy), nil
}

func ingestFile(req Request, limits Limits) (any, error) {
	if err := upload.Validate(req.Filename, int64(len(req.Payload)), limits.extensions, limits.maxSize); err != nil {
		return nil, err
	}
	if limits.requireUTF8 {
		if i := invalidUTF8(req.Payload); i >= 0 {
			return nil, &Rejection{
				Reason:  ReasonInvalidFormat,
				Message: fmt.Sprintf("file content is not valid UTF-8 at byte %d", i),
				Offset:  int64(i),
			}
		}
	}
	return req.Payload, nil
}

func checkSize(n int, limit int64) error {
	if limit >= 0 && int64(n) > limit {
		return SizeRejection(limit, int64(n))
	}
	return nil
}

// invalidUTF8 returns the offset of the first invalid byte, or -1.
func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

func (g *Guard) fail(ctx context.Context, kind Kind, err error) Result {
	level, message := slog.LevelError, "internal error"
	if errors.Is(err, context.Canceled) {
		level, message = slog.LevelWarn, "request canceled"
	}
	g.log.LogAttrs(ctx, level, "guarded operation failed",
		logger.Kind(string(kind)),
		logger.Error(err),
	)
	return reject(kind, &Rejection{
		Reason:  ReasonInternal,
		Message: message,
		cause:   errors.Join(ErrInternal, err),
	})
}

func (g *Guard) report(ctx context.Context, req Request, res Result, elapsed time.Duration, hit bool) {
	attrs := []slog.Attr{
		logger.Kind(string(req.Kind)),
		logger.Size(int64(len(req.Payload))),
		logger.Duration(elapsed),
		logger.CacheHit(hit),
	}

	switch {
	case res.Rejection == nil:
		g.log.LogAttrs(ctx, slog.LevelDebug, "input accepted", attrs...)
	case res.Rejection.Internal():
		// Already logged by fail.
	default:
		attrs = append(attrs, logger.Reason(string(res.Rejection.Reason)))
		g.log.LogAttrs(ctx, slog.LevelInfo, "input rejected", attrs...)
	}
}
