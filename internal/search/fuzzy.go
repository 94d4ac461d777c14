package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmr/internal/model"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// displayNames implements fuzzy.Source for a listing.
type displayNames model.Listing

func (d displayNames) String(i int) string {
	return d[i].DisplayName
}

func (d displayNames) Len() int {
	return len(d)
}

// FuzzyMatch matches items by display name.
// Returns results sorted by match score (best first).
func FuzzyMatch(items model.Listing, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, displayNames(items))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       &items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// RankBookmarks orders backend search results by how well their display name
// matches query. Items the fuzzy matcher does not match keep their backend
// order after the matched ones.
func RankBookmarks(items model.Listing, query string) model.Listing {
	if query == "" {
		return items.Clone()
	}

	matches := fuzzy.FindFrom(query, displayNames(items))
	ranked := make(model.Listing, 0, len(items))
	matched := make(map[int]bool, len(matches))
	for _, m := range matches {
		ranked = append(ranked, items[m.Index])
		matched[m.Index] = true
	}
	for i := range items {
		if !matched[i] {
			ranked = append(ranked, items[i])
		}
	}
	return ranked
}
