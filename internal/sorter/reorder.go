// Package sorter reorders a folder listing optimistically and synchronizes
// the new order with the backend, rolling back when the backend refuses.
package sorter

import (
	"slices"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
)

// Reorder moves the item at from to position to. The moved item's sort key
// is placed right after the target when moving forward and right before it
// when moving backward; the returned batch renumbers the whole list 0..n-1
// in the new order. items is not modified.
func Reorder(items model.Listing, from, to int) (model.Listing, model.SortOrderBatch, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, model.SortOrderBatch{}, apperr.Validation("cannot move item %d to %d in a list of %d", from, to, n)
	}
	if from == to {
		return items.Clone(), model.SortOrderBatch{}, nil
	}

	moved := items[from]
	target := items[to]
	if to > from {
		moved.SortOrder = target.SortOrder + 1
	} else {
		moved.SortOrder = target.SortOrder - 1
	}

	out := slices.Delete(items.Clone(), from, from+1)
	out = slices.Insert(out, to, moved)
	out.Number()

	return out, model.NewSortOrderBatch(out), nil
}
