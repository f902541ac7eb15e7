package sanitizer

import "strings"

// AnyTag is the AllowedAttributes key whose attributes apply to every allowed tag.
const AnyTag = "*"

// Policy is an allowlist of tags and attributes. The zero value allows no
// markup at all, so Sanitize with a zero Policy yields escaped text only.
// A Policy is never modified after construction and can be shared freely.
type Policy struct {
	tags    map[string]struct{}
	attrs   map[string]map[string]struct{}
	schemes map[string]struct{}
}

// PolicyOption adjusts a Policy during NewPolicy.
type PolicyOption func(*Policy)

// WithURLSchemes replaces the schemes accepted in URL attributes.
// Relative URLs are always accepted.
func WithURLSchemes(schemes ...string) PolicyOption {
	return func(p *Policy) {
		p.schemes = make(map[string]struct{}, len(schemes))
		for _, s := range schemes {
			s = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
			if s != "" {
				p.schemes[s] = struct{}{}
			}
		}
	}
}

// NewPolicy builds a Policy from tag names and a tag to attribute-names map.
// Names are matched case-insensitively.
func NewPolicy(tags []string, attrs map[string][]string, opts ...PolicyOption) Policy {
	p := Policy{
		tags:  make(map[string]struct{}, len(tags)),
		attrs: make(map[string]map[string]struct{}, len(attrs)),
		schemes: map[string]struct{}{
			"http":   {},
			"https":  {},
			"mailto": {},
		},
	}

	for _, t := range tags {
		if t = normalizeName(t); t != "" {
			p.tags[t] = struct{}{}
		}
	}

	for tag, names := range attrs {
		tag = normalizeName(tag)
		if tag == "" {
			continue
		}
		set := p.attrs[tag]
		if set == nil {
			set = make(map[string]struct{}, len(names))
			p.attrs[tag] = set
		}
		for _, n := range names {
			if n = normalizeName(n); n != "" {
				set[n] = struct{}{}
			}
		}
	}

	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// DefaultTags returns the tags a CommonMark/GFM renderer emits.
func DefaultTags() []string {
	return []string{
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr", "blockquote", "pre", "code", "kbd", "samp",
		"em", "strong", "b", "i", "u", "s", "del", "ins", "mark", "sub", "sup",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td",
		"a", "img", "span", "div", "input",
	}
}

// DefaultAttributes returns the attributes kept on DefaultTags.
func DefaultAttributes() map[string][]string {
	return map[string][]string{
		"a":     {"href", "title"},
		"img":   {"src", "alt", "title", "width", "height"},
		"code":  {"class"},
		"ol":    {"start"},
		"th":    {"align"},
		"td":    {"align"},
		"input": {"type", "checked", "disabled"},
	}
}

// DefaultPolicy allows the markup produced by a CommonMark/GFM renderer.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultTags(), DefaultAttributes())
}

// AllowsTag reports whether tag survives sanitization.
// Tags that carry executable or raw content never do.
func (p Policy) AllowsTag(tag string) bool {
	tag = normalizeName(tag)
	if _, dropped := droppedWithContent[tag]; dropped {
		return false
	}
	_, ok := p.tags[tag]
	return ok
}

// AllowsAttribute reports whether attr is kept on tag.
func (p Policy) AllowsAttribute(tag, attr string) bool {
	tag, attr = normalizeName(tag), normalizeName(attr)
	if _, ok := p.attrs[tag][attr]; ok {
		return true
	}
	_, ok := p.attrs[AnyTag][attr]
	return ok
}

func (p Policy) allowsScheme(scheme string) bool {
	_, ok := p.schemes[scheme]
	return ok
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
