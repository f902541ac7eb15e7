package guard

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrymomot/inputguard/pkg/pattern"
	"github.com/dmitrymomot/inputguard/pkg/sanitizer"
	"github.com/dmitrymomot/inputguard/pkg/upload"
)

const (
	DefaultMaxSizeBytes = 10 << 20
	DefaultMaxDepth     = 50
	DefaultTimeout      = pattern.DefaultTimeout
	DefaultMaxMatches   = 10000
)

// DefaultExtensions are the upload extensions accepted by DefaultLimits.
var DefaultExtensions = []string{"txt", "json", "csv", "md", "yaml", "yml"}

// Limits bounds every guarded operation. It is a value: the With methods
// return a modified copy and accessors return copies, so a Limits shared
// between goroutines never changes. A negative size or depth disables that
// check. Start from DefaultLimits; the zero value rejects every non-empty
// payload.
type Limits struct {
	maxSize     int64
	maxDepth    int
	timeout     time.Duration
	maxMatches  int
	requireUTF8 bool
	extensions  []string
	tags        []string
	attrs       map[string][]string
	policy      sanitizer.Policy
}

// DefaultLimits returns 10 MiB, depth 50, a 5s pattern deadline, 10000
// matches, UTF-8 uploads with DefaultExtensions and the markdown allowlist.
func DefaultLimits() Limits {
	return Limits{
		maxSize:     DefaultMaxSizeBytes,
		maxDepth:    DefaultMaxDepth,
		timeout:     DefaultTimeout,
		maxMatches:  DefaultMaxMatches,
		requireUTF8: true,
		extensions:  upload.NormalizeExtensions(DefaultExtensions),
	}.WithAllowedMarkup(sanitizer.DefaultTags(), sanitizer.DefaultAttributes())
}

func (l Limits) WithMaxSizeBytes(n int64) Limits {
	l.maxSize = n
	return l
}

func (l Limits) WithMaxDepth(n int) Limits {
	l.maxDepth = n
	return l
}

// WithTimeout sets the pattern deadline; non-positive means pattern.DefaultTimeout.
func (l Limits) WithTimeout(d time.Duration) Limits {
	l.timeout = d
	return l
}

// WithMaxMatches caps collected matches; 0 means no cap.
func (l Limits) WithMaxMatches(n int) Limits {
	l.maxMatches = n
	return l
}

func (l Limits) WithRequireUTF8(v bool) Limits {
	l.requireUTF8 = v
	return l
}

// WithAllowedExtensions replaces the upload allowlist. Entries are folded
// and stripped of leading dots.
func (l Limits) WithAllowedExtensions(exts ...string) Limits {
	l.extensions = upload.NormalizeExtensions(exts)
	return l
}

// WithAllowedMarkup replaces the tag and attribute allowlist used by
// MarkupRender.
func (l Limits) WithAllowedMarkup(tags []string, attrs map[string][]string) Limits {
	l.tags = slices.Clone(tags)
	l.attrs = cloneAttrs(attrs)
	l.policy = sanitizer.NewPolicy(l.tags, l.attrs)
	return l
}

func (l Limits) MaxSizeBytes() int64 { return l.maxSize }

func (l Limits) MaxDepth() int { return l.maxDepth }

func (l Limits) Timeout() time.Duration { return l.timeout }

func (l Limits) MaxMatches() int { return l.maxMatches }

func (l Limits) RequireUTF8() bool { return l.requireUTF8 }

func (l Limits) AllowedExtensions() []string { return slices.Clone(l.extensions) }

func (l Limits) AllowedTags() []string { return slices.Clone(l.tags) }

func (l Limits) AllowedAttributes() map[string][]string { return cloneAttrs(l.attrs) }

// Policy is the sanitizer policy derived from the markup allowlist.
func (l Limits) Policy() sanitizer.Policy { return l.policy }

// fingerprint is a canonical encoding of every limit, used in memo keys.
func (l Limits) fingerprint() []byte {
	b := make([]byte, 0, 256)
	b = strconv.AppendInt(b, l.maxSize, 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(l.maxDepth), 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(l.timeout), 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(l.maxMatches), 10)
	b = append(b, '|')
	b = strconv.AppendBool(b, l.requireUTF8)
	b = append(b, '|')
	b = appendSorted(b, l.extensions)
	b = append(b, '|')
	b = appendSorted(b, l.tags)
	for _, tag := range slices.Sorted(maps.Keys(l.attrs)) {
		b = append(b, '|')
		b = appendField(b, tag)
		b = appendSorted(b, l.attrs[tag])
	}
	return b
}

func appendSorted(b []byte, items []string) []byte {
	for _, s := range slices.Sorted(slices.Values(items)) {
		b = appendField(b, s)
	}
	return b
}

func appendField(b []byte, s string) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	return append(b, s...)
}

func cloneAttrs(attrs map[string][]string) map[string][]string {
	if attrs == nil {
		return nil
	}
	out := make(map[string][]string, len(attrs))
	for tag, names := range attrs {
		out[tag] = slices.Clone(names)
	}
	return out
}

// Cache backends accepted in Config.CacheBackend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the env-driven guard configuration.
type Config struct {
	MaxSizeBytes      int64         `env:"GUARD_MAX_SIZE_BYTES" envDefault:"10485760"`                                      // MaxSizeBytes caps every payload.
	MaxDepth          int           `env:"GUARD_MAX_DEPTH" envDefault:"50"`                                                 // MaxDepth caps structured nesting.
	Timeout           time.Duration `env:"GUARD_TIMEOUT" envDefault:"5s"`                                                   // Timeout is the pattern deadline.
	MaxMatches        int           `env:"GUARD_MAX_MATCHES" envDefault:"10000"`                                            // MaxMatches caps collected matches.
	AllowedExtensions []string      `env:"GUARD_ALLOWED_EXTENSIONS" envDefault:"txt,json,csv,md,yaml,yml" envSeparator:","` // AllowedExtensions is the upload allowlist.
	AllowedTags       []string      `env:"GUARD_ALLOWED_TAGS" envSeparator:","`                                             // AllowedTags overrides the markdown tag allowlist when set.
	RequireUTF8       bool          `env:"GUARD_REQUIRE_UTF8" envDefault:"true"`                                            // RequireUTF8 rejects uploads that are not UTF-8 text.
	CacheBackend      string        `env:"GUARD_CACHE_BACKEND" envDefault:"memory"`                                         // CacheBackend is memory, redis or none.
	CacheSize         int           `env:"GUARD_CACHE_SIZE" envDefault:"1024"`                                              // CacheSize is the in-memory memo capacity; 0 disables it.
	CacheTTL          time.Duration `env:"GUARD_CACHE_TTL" envDefault:"10m"`                                                // CacheTTL is the Redis memo expiry.
}

// LimitsFromConfig builds Limits from cfg on top of DefaultLimits.
// Attribute rules are kept from the defaults for tags that remain allowed.
func LimitsFromConfig(cfg Config) Limits {
	l := DefaultLimits().
		WithMaxSizeBytes(cfg.MaxSizeBytes).
		WithMaxDepth(cfg.MaxDepth).
		WithTimeout(cfg.Timeout).
		WithMaxMatches(cfg.MaxMatches).
		WithRequireUTF8(cfg.RequireUTF8)

	if len(cfg.AllowedExtensions) > 0 {
		l = l.WithAllowedExtensions(cfg.AllowedExtensions...)
	}
	if len(cfg.AllowedTags) > 0 {
		l = l.WithAllowedMarkup(cfg.AllowedTags, sanitizer.DefaultAttributes())
	}
	return l
}
