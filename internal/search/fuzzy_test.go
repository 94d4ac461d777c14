package search

import (
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
)

func listing(names ...string) model.Listing {
	items := make(model.Listing, len(names))
	for i, n := range names {
		items[i] = model.Bookmark{ID: n, DisplayName: n, Type: model.NodeType}
	}
	return items
}

func TestFuzzyMatch_EmptyQuery(t *testing.T) {
	results := FuzzyMatch(listing("GitHub"), "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzyMatch_ExactMatch(t *testing.T) {
	results := FuzzyMatch(listing("GitHub", "GitLab"), "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.DisplayName != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.DisplayName)
	}
}

func TestFuzzyMatch_FuzzyMatch(t *testing.T) {
	// "tanrou" should fuzzy match "TanStack Router"
	results := FuzzyMatch(listing("TanStack Router", "React Router"), "tanrou")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	if results[0].Bookmark.DisplayName != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Bookmark.DisplayName)
	}
}

func TestFuzzyMatch_CaseInsensitive(t *testing.T) {
	results := FuzzyMatch(listing("GitHub"), "github")

	if len(results) != 1 {
		t.Fatalf("expected 1 result for case-insensitive match, got %d", len(results))
	}
}

func TestRankBookmarks_BestMatchFirst(t *testing.T) {
	items := listing("React Router Documentation", "Router", "Unrelated")

	ranked := RankBookmarks(items, "router")

	if len(ranked) != 3 {
		t.Fatalf("ranking must keep every item, got %d", len(ranked))
	}
	if ranked[0].DisplayName != "Router" {
		t.Errorf("expected 'Router' first (exact match), got %s", ranked[0].DisplayName)
	}
	if ranked[2].DisplayName != "Unrelated" {
		t.Errorf("expected unmatched item last, got %s", ranked[2].DisplayName)
	}
}

func TestRankBookmarks_EmptyQueryKeepsOrder(t *testing.T) {
	items := listing("b", "a")

	ranked := RankBookmarks(items, "")

	if ranked[0].ID != "b" || ranked[1].ID != "a" {
		t.Errorf("expected backend order, got %v", ranked.IDs())
	}
}
