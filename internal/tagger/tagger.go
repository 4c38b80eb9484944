// Package tagger suggests tags for free-text confession notes by matching
// the configured tag vocabulary against the text with a single Aho-Corasick
// automaton. Matching is case-insensitive and tolerant of punctuation. The
// vocabulary is curated by the user, so every non-blank tag is matchable —
// even one that doubles as a common English word ("general"). A tag made
// entirely of stopwords is logged at compile time, because notes like
// "met with the family" will then suggest a tag named "with".
package tagger

import (
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
	log "github.com/sirupsen/logrus"
)

// Dictionary is a compiled tag vocabulary. Build one with Compile and
// rebuild whenever the vocabulary changes; Suggest is read-only and safe
// for concurrent use.
type Dictionary struct {
	ac       *ahocorasick.Automaton
	patterns []string
	tags     []string       // pattern index -> original tag
	index    map[string]int // canonical pattern -> pattern index
}

// isJoiner reports punctuation preserved inside a tag, so "pre-marriage"
// and "o'brien" stay single patterns.
func isJoiner(r rune) bool {
	switch r {
	case '\'', '’', '‘', '-', '–', '—':
		return true
	}
	return false
}

// canonicalize folds text for matching: lowercase, punctuation variants
// normalized, every separator run collapsed to one space. The same fold is
// applied to patterns at compile time and to notes at suggest time.
func canonicalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	lastWasSpace := true
	for _, ch := range s {
		c := unicode.ToLower(ch)
		if c == '’' || c == '‘' {
			c = '\''
		}
		if c == '–' || c == '—' {
			c = '-'
		}

		if unicode.IsLetter(c) || unicode.IsDigit(c) || isJoiner(c) {
			out.WriteRune(c)
			lastWasSpace = false
		} else if !lastWasSpace {
			out.WriteRune(' ')
			lastWasSpace = true
		}
	}

	return strings.TrimRight(out.String(), " ")
}

// allStopwords reports whether every word of a canonical pattern is an
// English stopword.
func allStopwords(pattern string, stop *stopwords.Stopwords) bool {
	words := strings.Fields(pattern)
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if !stop.Contains(w) {
			return false
		}
	}
	return true
}

// Compile builds a Dictionary from the configured tag list. Blank tags are
// dropped; duplicate canonical forms keep the first spelling. Stopword-only
// tags are kept — the vocabulary is user-curated — but flagged, since they
// will fire on ordinary prose.
func Compile(tags []string) (*Dictionary, error) {
	stop := stopwords.MustGet("en")

	d := &Dictionary{index: make(map[string]int)}
	for _, tag := range tags {
		key := canonicalize(tag)
		if key == "" {
			continue
		}
		if allStopwords(key, stop) {
			log.WithField("tag", tag).Debug("configured tag is a common English word and may match often")
		}
		if _, exists := d.index[key]; exists {
			continue
		}
		d.index[key] = len(d.patterns)
		d.patterns = append(d.patterns, key)
		d.tags = append(d.tags, tag)
	}

	if len(d.patterns) == 0 {
		return d, nil
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(d.patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	d.ac = ac
	return d, nil
}

// IsKnown reports whether the vocabulary contains the tag, under the same
// fold Suggest matches with.
func (d *Dictionary) IsKnown(tag string) bool {
	_, ok := d.index[canonicalize(tag)]
	return ok
}

// Suggest returns the vocabulary tags mentioned in text, in order of first
// appearance, each at most once. Matches must sit on word boundaries:
// "art" never fires inside "heart".
func (d *Dictionary) Suggest(text string) []string {
	if d.ac == nil || len(d.patterns) == 0 {
		return nil
	}

	haystack := canonicalize(text)
	bytes := []byte(haystack)

	var out []string
	seen := make(map[int]bool)
	for _, m := range d.ac.FindAllOverlapping(bytes) {
		if !wordBounded(haystack, m.Start, m.End) {
			continue
		}
		if seen[m.PatternID] {
			continue
		}
		seen[m.PatternID] = true
		out = append(out, d.tags[m.PatternID])
	}
	return out
}

// wordBounded checks that a match span starts and ends on a word boundary
// of the canonical haystack. After canonicalization the only separator
// left is a single space.
func wordBounded(s string, start, end int) bool {
	if start > 0 && s[start-1] != ' ' {
		return false
	}
	if end < len(s) && s[end] != ' ' {
		return false
	}
	return true
}
