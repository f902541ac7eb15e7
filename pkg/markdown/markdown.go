// Package markdown converts Markdown to HTML with GitHub Flavored Markdown
// extensions.
//
// Raw HTML inside the source is passed through untouched. The output is
// therefore untrusted and must go through the sanitizer before it is served.
package markdown

import (
	"bytes"
	"errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

var ErrRender = errors.New("markdown: render failed")

// Renderer is a configured converter, safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	hardWraps bool
	headingID bool
}

// WithHardWraps renders single newlines as <br>.
func WithHardWraps() Option {
	return func(c *config) { c.hardWraps = true }
}

// WithHeadingIDs adds generated id attributes to headings.
func WithHeadingIDs() Option {
	return func(c *config) { c.headingID = true }
}

// New returns a GFM renderer: tables, strikethrough, autolinks and task lists.
func New(opts ...Option) *Renderer {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	rendererOpts := []goldmark.Option{}
	htmlOpts := []renderer.Option{html.WithUnsafe()}
	if cfg.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	rendererOpts = append(rendererOpts,
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	if cfg.headingID {
		rendererOpts = append(rendererOpts, goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	}

	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	buf.Grow(len(src) * 2)
	if err := r.md.Convert(src, &buf); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return buf.String(), nil
}

var defaultRenderer = New()

// Render converts src with the default renderer.
func Render(src []byte) (string, error) {
	return defaultRenderer.Render(src)
}
