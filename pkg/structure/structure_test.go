package structure_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/structure"
)

func nestedArrays(n int) string {
	return strings.Repeat("[", n) + strings.Repeat("]", n)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("accepts document within limits", func(t *testing.T) {
		t.Parallel()

		v, err := structure.Check([]byte(`{"a":[1,2,{"b":"c"}],"n":1.5}`), 1024, 5)
		require.NoError(t, err)

		m, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, json.Number("1.5"), m["n"])
	})

	t.Run("depth is counted from the root container", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(nestedArrays(3)), 1024, 2)
		require.NoError(t, err)

		_, err = structure.Check([]byte(nestedArrays(4)), 1024, 2)
		require.Error(t, err)
		assert.ErrorIs(t, err, structure.ErrDepthExceeded)

		var de *structure.DepthError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 3, de.Depth)
		assert.Equal(t, 2, de.Limit)
		assert.Equal(t, "/0/0/0", de.Path)
	})

	t.Run("deep document within parser reach reports path", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat(`{"a~b/c":`, 60) + "1" + strings.Repeat("}", 60)
		_, err := structure.Check([]byte(doc), 1<<20, 50)

		var de *structure.DepthError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 51, de.Depth)
		assert.True(t, strings.HasPrefix(de.Path, "/a~0b~1c/"))
	})

	t.Run("scalars do not count toward depth", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(`"just a string"`), 1024, 0)
		require.NoError(t, err)

		_, err = structure.Check([]byte(`{"a":1,"b":"x"}`), 1024, 0)
		require.NoError(t, err)

		_, err = structure.Check([]byte(`{"a":{}}`), 1024, 0)
		assert.ErrorIs(t, err, structure.ErrDepthExceeded)
	})

	t.Run("negative depth disables the bound", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(nestedArrays(200)), 1024, structure.Unlimited)
		require.NoError(t, err)
	})
}

func TestCheckBeyondParserNesting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format structure.Format
		doc    string
		depth  int
		path   bool
	}{
		{name: "json arrays 10001", format: structure.JSON, doc: nestedArrays(10001), depth: 51, path: true},
		{name: "json arrays 50000", format: structure.JSON, doc: nestedArrays(50000), depth: 51, path: true},
		{name: "json objects 10001", format: structure.JSON, doc: strings.Repeat(`{"a":`, 10001) + "1" + strings.Repeat("}", 10001), depth: 51, path: true},
		{name: "yaml flow 10001", format: structure.YAML, doc: nestedArrays(10001)},
		{name: "yaml flow 50000", format: structure.YAML, doc: nestedArrays(50000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := structure.CheckFormat([]byte(tt.doc), tt.format, 10<<20, 50)
			require.ErrorIs(t, err, structure.ErrDepthExceeded)
			assert.NotErrorIs(t, err, structure.ErrInvalidFormat)

			var de *structure.DepthError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, 50, de.Limit)
			assert.Greater(t, de.Depth, de.Limit)
			if tt.depth > 0 {
				assert.Equal(t, tt.depth, de.Depth)
			}
			if tt.path {
				assert.NotEmpty(t, de.Path)
			}
		})
	}

	t.Run("json scan stops at the first value", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(`[1] `+nestedArrays(100)), 1<<20, 5)
		assert.ErrorIs(t, err, structure.ErrInvalidFormat)
	})

	t.Run("json scan paths follow document order", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(`{"z":[1,{"k":[[]]}],"a":1}`), 1024, 2)
		var de *structure.DepthError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 3, de.Depth)
		assert.Equal(t, "/z/1/k", de.Path)
	})

	t.Run("deep but allowed document is parsed", func(t *testing.T) {
		t.Parallel()

		_, err := structure.Check([]byte(nestedArrays(9000)), 1<<20, 9000)
		require.NoError(t, err)
	})
}

func TestCheckSizeBeforeParse(t *testing.T) {
	t.Parallel()

	called := false
	limiter := structure.New(structure.WithParser(structure.JSON, func(raw []byte) (any, error) {
		called = true
		return nil, nil
	}))

	raw := []byte(strings.Repeat(" ", 2048))
	_, err := limiter.Check(raw, structure.JSON, 1024, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, structure.ErrSizeExceeded)
	assert.False(t, called, "parser must not run on oversized input")

	var se *structure.SizeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, int64(1024), se.Limit)
	assert.Equal(t, int64(2048), se.Actual)
}

func TestCheckSyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		line int
		col  int
	}{
		{name: "empty", raw: ""},
		{name: "truncated object", raw: `{"a": `, line: 1, col: 7},
		{name: "bad token on second line", raw: "{\n  \"a\": x}", line: 2},
		{name: "trailing data", raw: `{"a":1} {"b":2}`, line: 1},
		{name: "trailing garbage", raw: `[1]]`, line: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := structure.Check([]byte(tt.raw), 1024, 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, structure.ErrInvalidFormat)

			var se *structure.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, structure.JSON, se.Format)
			if tt.line > 0 {
				assert.Equal(t, tt.line, se.Line)
			}
			if tt.col > 0 {
				assert.Equal(t, tt.col, se.Column)
			}
		})
	}
}

func TestCheckYAML(t *testing.T) {
	t.Parallel()

	limiter := structure.New()

	t.Run("parses and normalizes keys", func(t *testing.T) {
		t.Parallel()

		v, err := limiter.Check([]byte("a:\n  1: one\n  b: [x, y]\n"), structure.YAML, 1024, 5)
		require.NoError(t, err)

		m := v.(map[string]any)
		inner, ok := m["a"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "one", inner["1"])
	})

	t.Run("depth limit", func(t *testing.T) {
		t.Parallel()

		_, err := limiter.Check([]byte("a:\n  b:\n    c:\n      d: 1\n"), structure.YAML, 1024, 1)
		var de *structure.DepthError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 2, de.Depth)
		assert.Equal(t, "/a/b", de.Path)
	})

	t.Run("syntax error carries line", func(t *testing.T) {
		t.Parallel()

		_, err := limiter.Check([]byte("a: 1\nb: [1, 2\n"), structure.YAML, 1024, 5)
		require.ErrorIs(t, err, structure.ErrInvalidFormat)

		var se *structure.SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, structure.YAML, se.Format)
		assert.Positive(t, se.Line)
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    structure.Format
		wantErr bool
	}{
		{in: "", want: structure.JSON},
		{in: "JSON", want: structure.JSON},
		{in: "yml", want: structure.YAML},
		{in: " yaml ", want: structure.YAML},
		{in: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := structure.ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, structure.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, structure.Depth("x"))
	assert.Equal(t, 0, structure.Depth(map[string]any{"a": 1}))
	assert.Equal(t, 2, structure.Depth([]any{[]any{map[string]any{}}}))
}

func TestCheckFormatUnsupported(t *testing.T) {
	t.Parallel()

	_, err := structure.CheckFormat([]byte("a = 1"), structure.Format("toml"), 1024, 5)
	assert.ErrorIs(t, err, structure.ErrUnsupportedFormat)
}
