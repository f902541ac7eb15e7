package guard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/guard"
)

func TestDefaultLimits(t *testing.T) {
	t.Parallel()
	l := guard.DefaultLimits()

	assert.Equal(t, int64(10<<20), l.MaxSizeBytes())
	assert.Equal(t, 50, l.MaxDepth())
	assert.Equal(t, 5*time.Second, l.Timeout())
	assert.Equal(t, 10000, l.MaxMatches())
	assert.True(t, l.RequireUTF8())
	assert.ElementsMatch(t, []string{"txt", "json", "csv", "md", "yaml", "yml"}, l.AllowedExtensions())
	assert.Contains(t, l.AllowedTags(), "p")
	assert.Equal(t, []string{"href", "title"}, l.AllowedAttributes()["a"])
	assert.True(t, l.Policy().AllowsTag("h1"))
	assert.False(t, l.Policy().AllowsTag("script"))
}

func TestLimitsAreValues(t *testing.T) {
	t.Parallel()

	t.Run("with methods copy", func(t *testing.T) {
		t.Parallel()
		base := guard.DefaultLimits()
		small := base.WithMaxSizeBytes(1).WithAllowedExtensions(".PDF")

		assert.Equal(t, int64(10<<20), base.MaxSizeBytes())
		assert.Equal(t, int64(1), small.MaxSizeBytes())
		assert.Equal(t, []string{"pdf"}, small.AllowedExtensions())
		assert.NotContains(t, base.AllowedExtensions(), "pdf")
	})

	t.Run("accessors return copies", func(t *testing.T) {
		t.Parallel()
		l := guard.DefaultLimits()

		exts := l.AllowedExtensions()
		exts[0] = "exe"
		tags := l.AllowedTags()
		tags[0] = "script"
		attrs := l.AllowedAttributes()
		attrs["a"][0] = "onclick"
		attrs["div"] = []string{"style"}

		assert.NotContains(t, l.AllowedExtensions(), "exe")
		assert.NotContains(t, l.AllowedTags(), "script")
		assert.Equal(t, []string{"href", "title"}, l.AllowedAttributes()["a"])
		assert.NotContains(t, l.AllowedAttributes(), "div")
	})

	t.Run("inputs are copied", func(t *testing.T) {
		t.Parallel()
		tags := []string{"b"}
		attrs := map[string][]string{"b": {"title"}}
		l := guard.DefaultLimits().WithAllowedMarkup(tags, attrs)

		tags[0] = "script"
		attrs["b"][0] = "onclick"

		assert.Equal(t, []string{"b"}, l.AllowedTags())
		assert.True(t, l.Policy().AllowsAttribute("b", "title"))
		assert.False(t, l.Policy().AllowsAttribute("b", "onclick"))
	})
}

func TestLimitsFromConfig(t *testing.T) {
	t.Setenv("GUARD_MAX_SIZE_BYTES", "2048")
	t.Setenv("GUARD_MAX_DEPTH", "3")
	t.Setenv("GUARD_TIMEOUT", "250ms")
	t.Setenv("GUARD_ALLOWED_EXTENSIONS", "PDF, .png")
	t.Setenv("GUARD_ALLOWED_TAGS", "p,a")
	t.Setenv("GUARD_REQUIRE_UTF8", "false")

	cfg, err := config.Parse[guard.Config]()
	require.NoError(t, err)
	assert.Equal(t, guard.CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)

	l := guard.LimitsFromConfig(cfg)
	assert.Equal(t, int64(2048), l.MaxSizeBytes())
	assert.Equal(t, 3, l.MaxDepth())
	assert.Equal(t, 250*time.Millisecond, l.Timeout())
	assert.Equal(t, 10000, l.MaxMatches())
	assert.False(t, l.RequireUTF8())
	assert.Equal(t, []string{"pdf", "png"}, l.AllowedExtensions())
	assert.Equal(t, []string{"p", "a"}, l.AllowedTags())
	assert.True(t, l.Policy().AllowsAttribute("a", "href"))
	assert.False(t, l.Policy().AllowsTag("h1"))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := guard.ParseKind(" Structured_Parse ")
	require.NoError(t, err)
	assert.Equal(t, guard.StructuredParse, k)

	_, err = guard.ParseKind("compile")
	assert.ErrorIs(t, err, guard.ErrInvalidRequest)
}
