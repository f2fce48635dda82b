// Package search extracts technology names from free-text job descriptions.
//
// The primary path is Tags, a fuzzy token match tolerant of the day-to-day
// noise in listing text (punctuation, casing, typos). A Levenshtein
// nearest-tag Matcher is retained as a superseded alternative.
package search

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	// acceptScore is the normalized-distance threshold below which a tag is
	// considered present in the description. Lower is a better match.
	acceptScore = 0.3

	// minTokenLen filters out short description tokens that match almost
	// anything.
	minTokenLen = 4
)

// Tags returns the subset of candidates found in the description using fuzzy
// token matching. When candidates is empty the DefaultTags dictionary is
// used.
func Tags(description string, candidates []string) []string {
	tokens := tokenize(description)
	if len(candidates) == 0 {
		candidates = DefaultTags
	}

	var found []string
	for _, tag := range candidates {
		if bestScore(tag, tokens) < acceptScore {
			found = append(found, tag)
		}
	}
	return found
}

// bestScore returns the lowest normalized Levenshtein distance between the
// tag and any description token. 1 means no token resembles the tag at all.
func bestScore(tag string, tokens []string) float64 {
	tag = strings.ToLower(tag)
	best := 1.0
	for _, token := range tokens {
		d := matchr.Levenshtein(tag, token)
		l := max(len(tag), len(token))
		if s := float64(d) / float64(l); s < best {
			best = s
		}
	}
	return best
}

// tokenize splits the description into lowercased tokens, trimming
// punctuation and dropping stop words and tokens shorter than minTokenLen.
func tokenize(description string) []string {
	var tokens []string
	for _, field := range strings.Fields(description) {
		token := strings.ToLower(strings.Trim(field, ".,;:()[]¡!¿?\"'"))
		if len(token) < minTokenLen {
			continue
		}
		if _, excluded := excludedTokens[token]; excluded {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// maxDistance is the largest edit distance the Matcher accepts between an
// input token and a known tag.
const maxDistance = 3

// Matcher resolves a raw input token to the nearest known technology name by
// edit distance, memoizing results per instance.
//
// Superseded by Tags, which handles whole descriptions; kept for callers that
// classify single tokens.
type Matcher struct {
	tags []string
	memo map[string]string
}

// NewMatcher builds a Matcher over the given tag list, falling back to
// DefaultTags when empty.
func NewMatcher(tags []string) *Matcher {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	return &Matcher{tags: tags, memo: make(map[string]string)}
}

// Nearest returns the known tag closest to input, or false when no tag is
// within maxDistance. Matching is case-insensitive and an exact match
// short-circuits. Inputs or tags shorter than 3 characters are never fuzzy
// matched.
func (m *Matcher) Nearest(input string) (string, bool) {
	lower := strings.ToLower(input)
	if hit, ok := m.memo[lower]; ok {
		return hit, true
	}
	if _, excluded := excludedTokens[lower]; excluded {
		return "", false
	}

	closest := ""
	minDist := maxDistance + 1
	for _, tag := range m.tags {
		if strings.EqualFold(tag, input) {
			return tag, true
		}
		if len(tag) < 3 || len(input) < 3 {
			continue
		}
		if d := matchr.Levenshtein(strings.ToLower(tag), lower); d < minDist {
			minDist = d
			closest = tag
		}
	}
	if minDist > maxDistance {
		return "", false
	}
	m.memo[lower] = closest
	return closest, true
}
