package upload

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MaxFilenameLength is the longest accepted file name, in bytes.
const MaxFilenameLength = 255

// Validate checks an upload's metadata before any of its content is read.
// Checks run in a fixed order and the first failure is returned:
// size against maxSize, then the extension against allowed, then the
// file name itself. A negative maxSize disables the size check.
func Validate(filename string, size int64, allowed []string, maxSize int64) error {
	if maxSize >= 0 && size > maxSize {
		return &SizeError{Limit: maxSize, Actual: size}
	}
	return ValidateName(filename, allowed)
}

// ValidateName runs the extension and file name checks of Validate.
func ValidateName(filename string, allowed []string) error {
	exts := NormalizeExtensions(allowed)
	ext := Extension(filename)

	ok := false
	for _, a := range exts {
		if a == ext {
			ok = true
			break
		}
	}
	if !ok || ext == "" {
		return &ExtensionError{Extension: ext, Allowed: exts}
	}

	if reason := unsafeName(filename); reason != "" {
		return &FilenameError{Filename: filename, Reason: reason}
	}
	return nil
}

// Extension returns the case-folded text after the last dot of filename,
// or "" when there is none.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return fold(filename[i+1:])
}

// NormalizeExtensions folds case and strips leading dots and blanks.
// Empty entries are dropped.
func NormalizeExtensions(allowed []string) []string {
	out := make([]string, 0, len(allowed))
	for _, a := range allowed {
		a = strings.TrimLeft(strings.TrimSpace(a), ".")
		if a != "" {
			out = append(out, fold(a))
		}
	}
	return out
}

func fold(s string) string {
	// A Caser keeps state between calls and must not be shared.
	return cases.Fold().String(s)
}

func unsafeName(name string) string {
	switch {
	case name == "":
		return "empty"
	case len(name) > MaxFilenameLength:
		return "longer than 255 bytes"
	case !utf8.ValidString(name):
		return "not valid UTF-8"
	case strings.IndexByte(name, 0) >= 0:
		return "contains a NUL byte"
	case strings.ContainsAny(name, `/\`):
		return "contains a path separator"
	case strings.Contains(name, ".."):
		return "contains a parent directory reference"
	case strings.Count(name, ".") != 1:
		return "must contain exactly one dot"
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return "contains a control character"
		}
		if r != '.' && r != ' ' && r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "contains a disallowed character"
		}
	}

	if strings.TrimSpace(name[:strings.IndexByte(name, '.')]) == "" {
		return "has an empty name before the extension"
	}
	return ""
}
