// Package matcher resolves free-text names typed in chat against a user's
// own habits, tasks and projects.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Threshold is the minimum score a candidate needs to be returned.
const Threshold = 0.7

// Result is the best candidate for a search term. Candidate is nil when
// nothing scored at least Threshold.
type Result[T any] struct {
	Candidate *T
	Score     float64
}

// Found reports whether a candidate was accepted.
func (r Result[T]) Found() bool { return r.Candidate != nil }

// Best scores every candidate against term and returns the highest scoring
// one if it reaches Threshold. nameOf extracts the display name to compare.
// Terms and names with nothing left after Normalize (emoji only) never match.
func Best[T any](candidates []T, nameOf func(T) string, term string) Result[T] {
	search := Normalize(term)
	if search == "" {
		return Result[T]{}
	}
	searchTokens := strings.Fields(search)

	bestIdx := -1
	bestScore := 0.0
	for i := range candidates {
		name := Normalize(nameOf(candidates[i]))
		if name == "" {
			continue
		}
		if name == search {
			return Result[T]{Candidate: &candidates[i], Score: 1.0}
		}

		s := score(strings.Fields(name), searchTokens)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < Threshold {
		return Result[T]{Score: bestScore}
	}
	return Result[T]{Candidate: &candidates[bestIdx], Score: bestScore}
}

// score is the share of candidate tokens that overlap a search token,
// divided by the longer of the two token lists.
func score(nameTokens, searchTokens []string) float64 {
	total := max(len(nameTokens), len(searchTokens))
	if total == 0 {
		return 0
	}

	matched := 0
	for _, word := range nameTokens {
		for _, sw := range searchTokens {
			if sw == word || strings.Contains(sw, word) || strings.Contains(word, sw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(total)
}

// Normalize lowercases s, folds accented letters to their base letter and
// drops everything outside [a-z0-9 ].
func Normalize(s string) string {
	// transformer chains keep state, build one per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
