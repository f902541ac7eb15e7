package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// droppedWithContent lists elements removed together with everything inside
// them, whatever the policy says.
var droppedWithContent = map[string]struct{}{
	"script": {}, "style": {}, "iframe": {}, "object": {}, "embed": {},
	"noscript": {}, "noembed": {}, "noframes": {}, "template": {}, "xmp": {},
	"plaintext": {}, "svg": {}, "math": {}, "frameset": {}, "frame": {},
	"applet": {}, "base": {}, "link": {}, "meta": {},
}

// rawTextElements switch the tokenizer into raw text mode even when written
// as self-closing, so their content must be skipped either way.
var rawTextElements = map[string]struct{}{
	"iframe": {}, "noembed": {}, "noframes": {}, "noscript": {},
	"plaintext": {}, "script": {}, "style": {}, "xmp": {},
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "frame": {},
	"hr": {}, "img": {}, "input": {}, "keygen": {}, "link": {}, "meta": {},
	"param": {}, "source": {}, "track": {}, "wbr": {},
}

var urlAttributes = map[string]struct{}{
	"href": {}, "src": {}, "cite": {}, "action": {}, "formaction": {},
	"poster": {}, "background": {}, "longdesc": {},
}

func isVoid(tag string) bool {
	_, ok := voidElements[tag]
	return ok
}

// Sanitize rewrites markup so that only the tags and attributes allowed by
// policy remain. Disallowed tags are unwrapped and their text kept, while
// script-bearing elements disappear with their content. The output is a
// balanced token stream, so sanitizing it again returns it unchanged.
func Sanitize(markup string, policy Policy) string {
	z := html.NewTokenizer(strings.NewReader(markup))

	var (
		b         strings.Builder
		open      []string
		skipTag   string
		skipDepth int
	)
	b.Grow(len(markup))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer failure; either way the stream ends here.
			for i := len(open) - 1; i >= 0; i-- {
				writeEndTag(&b, open[i])
			}
			return b.String()

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(escape(string(z.Text())))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			name := tok.Data

			if skipDepth > 0 {
				if name == skipTag && tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}

			if _, drop := droppedWithContent[name]; drop {
				_, raw := rawTextElements[name]
				if (tt == html.StartTagToken || raw) && !isVoid(name) {
					skipTag, skipDepth = name, 1
				}
				continue
			}

			if _, ok := policy.tags[name]; !ok {
				continue
			}

			writeStartTag(&b, name, tok.Attr, policy)
			if !isVoid(name) {
				open = append(open, name)
			}

		case html.EndTagToken:
			tok := z.Token()
			name := tok.Data

			if skipDepth > 0 {
				if name == skipTag {
					skipDepth--
				}
				continue
			}

			idx := -1
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			for i := len(open) - 1; i >= idx; i-- {
				writeEndTag(&b, open[i])
			}
			open = open[:idx]

		case html.CommentToken, html.DoctypeToken:
			// dropped
		}
	}
}

// StripTags removes all markup and returns the text content, HTML-escaped.
func StripTags(markup string) string {
	return Sanitize(markup, Policy{})
}

func writeStartTag(b *strings.Builder, name string, attrs []html.Attribute, policy Policy) {
	b.WriteByte('<')
	b.WriteString(name)

	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		if _, dup := seen[a.Key]; dup {
			continue
		}
		seen[a.Key] = struct{}{}

		if !policy.AllowsAttribute(name, a.Key) {
			continue
		}
		if _, isURL := urlAttributes[a.Key]; isURL && !safeURL(a.Val, policy) {
			continue
		}

		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escape(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func writeEndTag(b *strings.Builder, name string) {
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func escape(s string) string {
	return html.EscapeString(strings.ReplaceAll(s, "\x00", ""))
}

// safeURL accepts relative references and absolute URLs whose scheme the
// policy allows. Browsers ignore ASCII whitespace and control characters
// inside a scheme, so they are removed before looking for one.
func safeURL(raw string, policy Policy) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)

	end := strings.IndexAny(cleaned, "/?#")
	if end < 0 {
		end = len(cleaned)
	}
	colon := strings.IndexByte(cleaned[:end], ':')
	if colon < 0 {
		return true
	}
	return policy.allowsScheme(strings.ToLower(cleaned[:colon]))
}
