package api

import "github.com/nikbrunner/bmr/internal/model"

// Result is the generic write acknowledgement of the backend.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// bookmarkResult wraps a single item.
type bookmarkResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Value   model.Bookmark `json:"value"`
}

// bookmarkList wraps a list of items.
type bookmarkList struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Message string           `json:"message"`
	Value   []model.Bookmark `json:"value"`
}

type pathsResult struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
}

// DocumentPage is one page of a document search.
type DocumentPage struct {
	Documents    []model.Document `json:"documents"`
	TotalEntries int              `json:"totalEntries"`
}

// UploadResult is returned for a temporarily stored upload. The token is
// referenced when the document is saved.
type UploadResult struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}
