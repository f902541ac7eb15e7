package guard

import (
	"context"

	"github.com/dmitrymomot/inputguard/pkg/pattern"
)

// TestPattern finds all matches of expr in text under the guard's limits.
func (g *Guard) TestPattern(ctx context.Context, expr string, flags pattern.Flags, text string) (pattern.Outcome, error) {
	res := g.Evaluate(ctx, Request{
		Kind:    PatternTest,
		Pattern: expr,
		Flags:   flags,
		Payload: []byte(text),
	})
	if err := res.Err(); err != nil {
		return pattern.Outcome{}, err
	}
	out, _ := res.Output.(pattern.Outcome)
	return out, nil
}

// ParseStructured parses raw as format ("json" or "yaml").
func (g *Guard) ParseStructured(ctx context.Context, raw []byte, format string) (any, error) {
	res := g.Evaluate(ctx, Request{Kind: StructuredParse, Payload: raw, Format: format})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Output, nil
}

// RenderMarkup returns src as sanitized HTML. Format is "html" or "markdown".
func (g *Guard) RenderMarkup(ctx context.Context, src []byte, format string) (string, error) {
	res := g.Evaluate(ctx, Request{Kind: MarkupRender, Payload: src, Format: format})
	if err := res.Err(); err != nil {
		return "", err
	}
	out, _ := res.Output.(string)
	return out, nil
}

// IngestFile validates an uploaded file and returns its content.
func (g *Guard) IngestFile(ctx context.Context, filename string, content []byte) ([]byte, error) {
	res := g.Evaluate(ctx, Request{Kind: FileIngest, Payload: content, Filename: filename})
	if err := res.Err(); err != nil {
		return nil, err
	}
	out, _ := res.Output.([]byte)
	return out, nil
}
