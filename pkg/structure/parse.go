package structure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func parseJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Format: JSON, Reason: "empty document", Err: err}
		}
		return nil, jsonError(raw, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		off := dec.InputOffset()
		return nil, newSyntaxError(JSON, raw, off, "unexpected data after top-level value", err)
	}
	return v, nil
}

func jsonError(raw []byte, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		if strings.Contains(syn.Error(), "exceeded max depth") {
			err = errors.Join(err, errNestingCeiling)
		}
		return newSyntaxError(JSON, raw, syn.Offset, syn.Error(), err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return newSyntaxError(JSON, raw, int64(len(raw)), "unexpected end of input", err)
	}
	return &SyntaxError{Format: JSON, Reason: err.Error(), Err: err}
}

func newSyntaxError(format Format, raw []byte, offset int64, reason string, err error) *SyntaxError {
	line, col := position(raw, offset)
	return &SyntaxError{Format: format, Offset: offset, Line: line, Column: col, Reason: reason, Err: err}
}

// position converts a byte offset to a 1-based line and column.
func position(raw []byte, offset int64) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(raw)) {
		offset = int64(len(raw))
	}
	head := raw[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	col := int(offset) - (bytes.LastIndexByte(head, '\n') + 1) + 1
	return line, col
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parseYAML(raw []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		reason := err.Error()
		if strings.Contains(reason, "exceeded max depth") {
			err = errors.Join(err, errNestingCeiling)
		}
		se := &SyntaxError{Format: YAML, Reason: reason, Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			se.Line, _ = strconv.Atoi(m[1])
		}
		return nil, se
	}
	return normalize(v), nil
}

// normalize rewrites YAML mappings with non-string keys into map[string]any
// so every parser hands the walker the same shapes. It uses its own stack for
// the same reason walk does.
func normalize(v any) any {
	type slot struct {
		value any
		set   func(any)
	}
	var root any
	stack := []slot{{value: v, set: func(x any) { root = x }}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch c := s.value.(type) {
		case map[any]any:
			m := make(map[string]any, len(c))
			for k, child := range c {
				key := fmt.Sprint(k)
				stack = append(stack, slot{value: child, set: func(x any) { m[key] = x }})
			}
			s.set(m)
		case map[string]any:
			for k, child := range c {
				stack = append(stack, slot{value: child, set: func(x any) { c[k] = x }})
			}
			s.set(c)
		case []any:
			for i, child := range c {
				stack = append(stack, slot{value: child, set: func(x any) { c[i] = x }})
			}
			s.set(c)
		default:
			s.set(c)
		}
	}
	return root
}
