package pattern

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/dlclark/regexp2/syntax"
)

// errEngineTimeout marks the engine's own MatchTimeout firing inside the worker.
// regexp2 reports no other runtime errors.
var errEngineTimeout = errors.New("pattern: engine match timeout")

func execute(re *regexp2.Regexp, spec Spec) (Outcome, error) {
	out := Outcome{Operation: spec.Operation, Matches: []Match{}}
	runes := []rune(spec.Text)

	switch spec.Operation {
	case OpMatch, OpSearch:
		m, err := re.FindRunesMatch(runes)
		if err != nil {
			return Outcome{}, engineError(err)
		}
		if m != nil && (spec.Operation == OpSearch || m.Index == 0) {
			out.Matches = []Match{convert(re, m)}
		}
		return out, nil

	case OpSubstitute:
		// Template errors surface before any matching work.
		if _, err := re.Replace("", spec.Replacement, -1, -1); err != nil {
			return Outcome{}, newSyntaxError(spec.Replacement, err)
		}
	}

	raw, truncated, err := findAll(re, runes, spec.MaxMatches)
	if err != nil {
		return Outcome{}, err
	}
	out.Truncated = truncated
	out.Matches = make([]Match, 0, len(raw))
	for _, m := range raw {
		out.Matches = append(out.Matches, convert(re, m))
	}

	switch spec.Operation {
	case OpSplit:
		out.Parts = split(runes, raw)
	case OpSubstitute:
		count := -1
		if truncated {
			count = len(raw)
		}
		replaced, err := re.Replace(spec.Text, spec.Replacement, -1, count)
		if err != nil {
			return Outcome{}, engineError(err)
		}
		out.Replaced = replaced
	}

	return out, nil
}

func findAll(re *regexp2.Regexp, runes []rune, limit int) ([]*regexp2.Match, bool, error) {
	var matches []*regexp2.Match
	m, err := re.FindRunesMatch(runes)
	for m != nil {
		if err != nil {
			return nil, false, engineError(err)
		}
		if limit > 0 && len(matches) == limit {
			return matches, true, nil
		}
		matches = append(matches, m)
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, false, engineError(err)
	}
	return matches, false, nil
}

// split follows the usual regex split contract: the text between matches, with
// the captured groups of each match inserted between the pieces.
func split(runes []rune, matches []*regexp2.Match) []string {
	parts := make([]string, 0, len(matches)+1)
	last := 0
	for _, m := range matches {
		parts = append(parts, string(runes[last:m.Index]))
		groups := m.Groups()
		for _, g := range groups[1:] {
			if len(g.Captures) == 0 {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, g.String())
		}
		last = m.Index + m.Length
	}
	return append(parts, string(runes[last:]))
}

func convert(re *regexp2.Regexp, m *regexp2.Match) Match {
	out := Match{
		Text:  m.String(),
		Start: m.Index,
		End:   m.Index + m.Length,
	}
	groups := m.Groups()
	if len(groups) <= 1 {
		return out
	}
	out.Groups = make([]Group, 0, len(groups)-1)
	for _, g := range groups[1:] {
		grp := Group{Name: g.Name, Matched: len(g.Captures) > 0}
		if grp.Matched {
			grp.Text = g.String()
			grp.Start = g.Index
			grp.End = g.Index + g.Length
		}
		out.Groups = append(out.Groups, grp)
	}
	return out
}

func engineError(err error) error {
	return errors.Join(errEngineTimeout, err)
}

func newSyntaxError(source string, err error) *SyntaxError {
	reason := strings.TrimPrefix(err.Error(), "error parsing regexp: ")
	var perr *syntax.Error
	if errors.As(err, &perr) {
		reason = strings.TrimSuffix(reason, " in `"+perr.Expr+"`")
	}
	return &SyntaxError{Pattern: source, Reason: reason, Offset: -1, Err: err}
}
