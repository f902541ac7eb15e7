package structure

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// frame is one container on the explicit traversal stack. Parent links are
// only followed to build a path once a violation is found.
type frame struct {
	value  any
	depth  int
	parent *frame
	key    string
}

func checkDepth(v any, limit int) error {
	var violation *DepthError
	walk(v, func(depth int, f *frame) bool {
		if depth > limit {
			violation = &DepthError{Limit: limit, Depth: depth, Path: f.path()}
			return false
		}
		return true
	})
	if violation != nil {
		return violation
	}
	return nil
}

// walk visits every container in v without native recursion. visit is called
// once per container with its depth; returning false stops the walk at once.
func walk(v any, visit func(depth int, f *frame) bool) {
	if !isContainer(v) {
		return
	}

	stack := []*frame{{value: v}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(f.depth, f) {
			return
		}

		switch c := f.value.(type) {
		case []any:
			// Push in reverse so children are visited left to right.
			for i := len(c) - 1; i >= 0; i-- {
				if isContainer(c[i]) {
					stack = append(stack, &frame{value: c[i], depth: f.depth + 1, parent: f, key: strconv.Itoa(i)})
				}
			}
		case map[string]any:
			keys := make([]string, 0, len(c))
			for k, child := range c {
				if isContainer(child) {
					keys = append(keys, k)
				}
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, &frame{value: c[k], depth: f.depth + 1, parent: f, key: k})
			}
		case map[any]any:
			keys := make([]string, 0, len(c))
			children := make(map[string]any, len(c))
			for k, child := range c {
				if isContainer(child) {
					ks := fmt.Sprint(k)
					keys = append(keys, ks)
					children[ks] = child
				}
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, &frame{value: children[k], depth: f.depth + 1, parent: f, key: k})
			}
		}
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case []any, map[string]any, map[any]any:
		return true
	}
	return false
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (f *frame) path() string {
	var segs []string
	for cur := f; cur != nil && cur.parent != nil; cur = cur.parent {
		segs = append(segs, pointerEscaper.Replace(cur.key))
	}
	if len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}
