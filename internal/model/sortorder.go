package model

import "fmt"

// SortOrderBatch is a complete renumbering of a folder's children.
// IDs and SortOrder are index-aligned.
type SortOrderBatch struct {
	IDs       []string `json:"ids"`
	SortOrder []int    `json:"sortOrder"`
}

// NewSortOrderBatch numbers the given items 0..n-1 in slice order.
func NewSortOrderBatch(items []Bookmark) SortOrderBatch {
	batch := SortOrderBatch{
		IDs:       make([]string, len(items)),
		SortOrder: make([]int, len(items)),
	}
	for i, b := range items {
		batch.IDs[i] = b.ID
		batch.SortOrder[i] = i
	}
	return batch
}

// Validate checks that both sequences have the same length.
func (s SortOrderBatch) Validate() error {
	if len(s.IDs) != len(s.SortOrder) {
		return fmt.Errorf("sort order batch: %d ids but %d positions", len(s.IDs), len(s.SortOrder))
	}
	return nil
}
