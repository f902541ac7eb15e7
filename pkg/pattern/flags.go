package pattern

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Flags is a bitwise union of independent matching options.
type Flags uint8

const (
	// IgnoreCase enables case-insensitive matching (i).
	IgnoreCase Flags = 1 << iota
	// Multiline makes ^ and $ match at line boundaries (m).
	Multiline
	// DotAll lets . match newlines (s).
	DotAll
	// Verbose ignores unescaped whitespace and allows # comments (x).
	Verbose
)

const allFlags = IgnoreCase | Multiline | DotAll | Verbose

var flagLetters = []struct {
	flag   Flags
	letter byte
}{
	{IgnoreCase, 'i'},
	{Multiline, 'm'},
	{DotAll, 's'},
	{Verbose, 'x'},
}

// ParseFlags converts a letter string like "ims" into Flags.
// "g" is accepted and ignored: every operation already scans the whole input.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	s = strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 'g' || c == ' ' || c == ',' || c == '|' {
			continue
		}
		found := false
		for _, fl := range flagLetters {
			if fl.letter == c {
				f |= fl.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, string(c))
		}
	}
	return f, nil
}

// Valid reports whether f only has known bits set.
func (f Flags) Valid() bool {
	return f&^allFlags == 0
}

func (f Flags) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}

func (f Flags) options() regexp2.RegexOptions {
	opts := regexp2.None
	if f&IgnoreCase != 0 {
		opts |= regexp2.IgnoreCase
	}
	if f&Multiline != 0 {
		opts |= regexp2.Multiline
	}
	if f&DotAll != 0 {
		opts |= regexp2.Singleline
	}
	if f&Verbose != 0 {
		opts |= regexp2.IgnorePatternWhitespace
	}
	return opts
}

// Operation selects what the evaluation does with the matches.
type Operation string

const (
	// OpFindAll collects every non-overlapping match, left to right.
	OpFindAll Operation = "findall"
	// OpMatch reports a match only if it starts at the beginning of the input.
	OpMatch Operation = "match"
	// OpSearch reports the first match anywhere in the input.
	OpSearch Operation = "search"
	// OpSplit cuts the input at every match; captured groups are kept as parts.
	OpSplit Operation = "split"
	// OpSubstitute replaces every match using $1 / ${name} templates.
	OpSubstitute Operation = "substitute"
)

// ParseOperation accepts the canonical names plus a few common aliases.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "findall", "find_all", "find-all", "all":
		return OpFindAll, nil
	case "match":
		return OpMatch, nil
	case "search", "find":
		return OpSearch, nil
	case "split":
		return OpSplit, nil
	case "substitute", "sub", "replace":
		return OpSubstitute, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}
