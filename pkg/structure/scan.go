package structure

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// parserNestingCeiling is the nesting level at which encoding/json and
// yaml.v3 give up on a document.
const parserNestingCeiling = 10000

// scanFunc looks for a container deeper than limit before the document is
// decoded. It returns nil when it finds none or cannot tokenize raw; the
// parser then reports the syntax error.
type scanFunc func(raw []byte, limit int) *DepthError

// scanLevel is an open container during a token scan.
type scanLevel struct {
	object    bool
	index     int
	key       string
	expectKey bool
	seg       string
}

// scanJSONDepth streams tokens and keeps one entry per open container, so
// neither memory nor native recursion grows past limit+1 levels.
func scanJSONDepth(raw []byte, limit int) *DepthError {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var stack []*scanLevel
	done := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				seg := ""
				if len(stack) > 0 {
					parent := stack[len(stack)-1]
					if parent.object {
						seg = parent.key
					} else {
						seg = strconv.Itoa(parent.index)
					}
				}
				stack = append(stack, &scanLevel{object: t == '{', expectKey: true, seg: seg})
				if depth := len(stack) - 1; depth > limit {
					return &DepthError{Limit: limit, Depth: depth, Path: scanPath(stack)}
				}
			case '}', ']':
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return nil
				}
				done()
			}
		default:
			// Only the first top-level value is scanned; the parser
			// rejects trailing data.
			if len(stack) == 0 {
				return nil
			}
			if n := len(stack); stack[n-1].object && stack[n-1].expectKey {
				stack[n-1].key, _ = t.(string)
				stack[n-1].expectKey = false
				continue
			}
			done()
		}
	}
}

func scanPath(stack []*scanLevel) string {
	var b strings.Builder
	for _, l := range stack[1:] {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(l.seg))
	}
	return b.String()
}
