package ui

import (
	"sort"
	"strings"

	"github.com/traitenum/traitenum/internal/model"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the default maximum number of suggestions
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures fuzzy matching behavior
type FuzzyMatchOptions struct {
	MaxDistance    int
	MaxSuggestions int
	CaseSensitive  bool
}

type suggestion struct {
	value    string
	distance int
}

// FindSimilar finds strings similar to the target using Levenshtein
// distance, closest first
//
//	FindSimilar("ParentTrat", []string{"ParentTrait", "ChildTrait"}, nil)
//	// Returns: ["ParentTrait"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	return rank(target, candidates, opts, func(s string) string { return s })
}

// SuggestIdentifiers ranks stored model identifiers against what the user
// typed. A bare name is compared with the last segment only.
func SuggestIdentifiers(target string, ids []model.Identifier, opts *FuzzyMatchOptions) []string {
	candidates := make([]string, len(ids))
	for i, id := range ids {
		candidates[i] = id.String()
	}

	key := func(s string) string { return s }
	if !strings.Contains(target, model.PathSeparator) {
		key = func(s string) string {
			if i := strings.LastIndex(s, model.PathSeparator); i >= 0 {
				return s[i+len(model.PathSeparator):]
			}
			return s
		}
	}
	return rank(target, candidates, opts, key)
}

func rank(target string, candidates []string, opts *FuzzyMatchOptions, key func(string) string) []string {
	if opts == nil {
		opts = &FuzzyMatchOptions{}
	}
	maxDistance := opts.MaxDistance
	if maxDistance == 0 {
		maxDistance = DefaultMaxDistance
	}
	maxSuggestions := opts.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = DefaultMaxSuggestions
	}

	var suggestions []suggestion
	for _, candidate := range candidates {
		targetCmp, candidateCmp := target, key(candidate)
		if !opts.CaseSensitive {
			targetCmp = strings.ToLower(targetCmp)
			candidateCmp = strings.ToLower(candidateCmp)
		}

		if dist := LevenshteinDistance(targetCmp, candidateCmp); dist <= maxDistance {
			suggestions = append(suggestions, suggestion{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].distance < suggestions[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(suggestions) && i < maxSuggestions; i++ {
		result = append(result, suggestions[i].value)
	}
	return result
}

// LevenshteinDistance is the minimum number of single-character edits
// turning s1 into s2
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
