package commandant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlorenz/commandant/internal/util"
)

// maxSuggestionDistance bounds how far a candidate may be from the input to
// qualify as a suggestion.
const maxSuggestionDistance = 3

// DefaultSuggest is the default SuggestFunc: a Levenshtein scan over the
// candidates keeping the closest ones, subject to a similarity floor so
// short inputs don't match everything.
func DefaultSuggest(input string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	searchingOptions := strings.HasPrefix(input, "--")
	if searchingOptions {
		input = input[2:]
		trimmed := make([]string, 0, len(candidates))
		for _, candidate := range candidates {
			trimmed = append(trimmed, strings.TrimPrefix(candidate, "--"))
		}
		candidates = trimmed
	}

	var similar []string
	bestDistance := maxSuggestionDistance
	const minSimilarity = 0.4
	seen := map[string]bool{}
	for _, candidate := range candidates {
		if len(candidate) <= 1 || seen[candidate] {
			continue
		}
		seen[candidate] = true
		distance := util.LevenshteinDistance(input, candidate)
		length := util.Max(len(input), len(candidate))
		similarity := float64(length-distance) / float64(length)
		if similarity <= minSimilarity || distance > bestDistance {
			continue
		}
		if distance < bestDistance {
			bestDistance = distance
			similar = []string{candidate}
		} else {
			similar = append(similar, candidate)
		}
	}

	sort.Strings(similar)
	if searchingOptions {
		for i, candidate := range similar {
			similar[i] = "--" + candidate
		}
	}

	switch len(similar) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("\n(Did you mean %s?)", similar[0])
	default:
		return fmt.Sprintf("\n(Did you mean one of %s?)", strings.Join(similar, ", "))
	}
}
