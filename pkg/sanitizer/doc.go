// Package sanitizer rewrites untrusted HTML against an allowlist so that it
// can be embedded in a rendered page without becoming executable.
//
// Sanitize streams the input through the golang.org/x/net/html tokenizer and
// re-emits only what the Policy allows:
//
//   - Tags outside the allowlist are unwrapped: the tag and its attributes go,
//     the text inside stays.
//   - Elements that carry scripts or raw content (script, style, iframe,
//     object, svg, template and similar) are removed with their whole subtree,
//     even when a policy lists them.
//   - Attributes outside the allowlist are stripped. URL attributes such as
//     href and src survive only when relative or when their scheme is allowed
//     (http, https and mailto by default).
//   - Comments and doctypes are dropped, text and attribute values are
//     re-escaped, and the element structure is balanced.
//
// Because the output is already in that canonical form, sanitizing it again
// returns the same string.
//
// # Usage
//
//	policy := sanitizer.NewPolicy(
//	    []string{"p", "a", "em"},
//	    map[string][]string{"a": {"href"}},
//	)
//	safe := sanitizer.Sanitize(`<p onclick="x()">hi <a href="javascript:x()">there</a></p>`, policy)
//	// safe == `<p>hi <a>there</a></p>`
//
// DefaultPolicy covers the markup produced by a Markdown renderer. StripTags
// keeps only the escaped text.
//
// Sanitize never returns an error: malformed markup is repaired, not refused.
// All functions are safe for concurrent use.
package sanitizer
