package search

import (
	"context"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
)

// DocumentSearcher is the paged document search of the backend.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, title string, limit, skip int) (api.DocumentPage, error)
}

// DocumentFetcher adapts the document search to a Fetcher. showAmount is
// consulted for every page so the flag can be toggled while searching.
func DocumentFetcher(svc DocumentSearcher, showAmount func() bool) Fetcher[model.Document] {
	return func(ctx context.Context, term string, limit, skip int) (Page[model.Document], error) {
		page, err := svc.SearchDocuments(ctx, term, limit, skip)
		if err != nil {
			return Page[model.Document]{}, err
		}
		show := showAmount != nil && showAmount()
		return Page[model.Document]{
			Items:        ProjectDocuments(page.Documents, show),
			TotalEntries: page.TotalEntries,
		}, nil
	}
}
