// Package match scores free-text item names against catalog entries.
// Scores are on the fuzzywuzzy 0-100 scale.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	// RenameThreshold is the floor for treating an extracted name as a
	// variant spelling of a catalog item.
	RenameThreshold = 40
	// IdentityThreshold is the floor for treating two names as the same
	// item outright.
	IdentityThreshold = 80
)

// Score returns the similarity of two item names, taking the better of the
// token-sort and partial ratios so word order and embedded names both count.
func Score(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	ts := fuzzy.TokenSortRatio(a, b)
	pr := fuzzy.PartialRatio(a, b)
	if pr > ts {
		return pr
	}
	return ts
}

// Plain returns the simple ratio, used where partial matches would be too
// permissive (supplier lookup by name).
func Plain(a, b string) int {
	return fuzzy.Ratio(strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)))
}

// TokenSort exposes the token-sort ratio for name-only identity checks.
func TokenSort(a, b string) int {
	return fuzzy.TokenSortRatio(strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)))
}

// IsLatin reports whether the name is written in Latin script, which is the
// cue that it may need translating before matching a Devanagari catalog.
func IsLatin(name string) bool {
	hasLetter := false
	for _, r := range name {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
			hasLetter = true
			continue
		}
		if r > 127 {
			return false
		}
	}
	return hasLetter
}
