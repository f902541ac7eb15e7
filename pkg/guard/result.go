package guard

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/inputguard/pkg/pattern"
)

// Kind selects the guarded operation.
type Kind string

const (
	// PatternTest runs Request.Pattern over Payload. Output is pattern.Outcome.
	PatternTest Kind = "pattern_test"
	// StructuredParse parses Payload as JSON or YAML. Output is the parsed value.
	StructuredParse Kind = "structured_parse"
	// MarkupRender sanitizes HTML or renders and sanitizes Markdown. Output is
	// the sanitized HTML string.
	MarkupRender Kind = "markup_render"
	// FileIngest validates an uploaded file. Output is the content as []byte.
	FileIngest Kind = "file_ingest"
)

// ParseKind accepts the Kind names.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case PatternTest, StructuredParse, MarkupRender, FileIngest:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, s)
}

// memoized reports whether results of k go through the memo cache.
// FileIngest output is the payload itself, so there is nothing to save.
func (k Kind) memoized() bool {
	return k == PatternTest || k == StructuredParse || k == MarkupRender
}

// Markup formats for MarkupRender.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

func parseMarkupFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: unsupported markup format %q", ErrInvalidRequest, s)
}

// Request is one guarded operation. Only the fields its Kind uses are read.
type Request struct {
	Kind    Kind
	Payload []byte

	// PatternTest
	Pattern     string
	Flags       pattern.Flags
	Operation   pattern.Operation
	Replacement string

	// FileIngest
	Filename string

	// Format is "json" or "yaml" for StructuredParse and "html" or
	// "markdown" for MarkupRender. Empty picks json and html.
	Format string

	// Limits overrides the guard's limits for this request when set.
	Limits *Limits
}

// Result is the outcome of Evaluate: either accepted with Output, or
// rejected with Rejection. Never both.
type Result struct {
	Kind      Kind       `json:"kind"`
	Output    any        `json:"output,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

func accept(kind Kind, output any) Result {
	return Result{Kind: kind, Output: output}
}

func reject(kind Kind, rej *Rejection) Result {
	return Result{Kind: kind, Rejection: rej}
}

// Accepted reports whether the request passed every check.
func (r Result) Accepted() bool { return r.Rejection == nil }

// Err returns nil for accepted results and the *Rejection otherwise, so
// errors.Is works against the Err* sentinels.
func (r Result) Err() error {
	if r.Rejection == nil {
		return nil
	}
	return r.Rejection
}

// memoizable reports whether r may be served again for the same input.
// Timeouts and internal failures never are.
func (r Result) memoizable() bool {
	if r.Rejection == nil {
		return true
	}
	return r.Rejection.Reason != ReasonTimeoutExceeded && r.Rejection.Reason != ReasonInternal
}
