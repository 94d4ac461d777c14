package search

import (
	"encoding/base64"
	"net/url"

	"github.com/nikbrunner/bmr/internal/model"
)

// Identifiable is implemented by everything that can be merged into a result
// list.
type Identifiable interface {
	GetID() string
}

// MergeUnique appends page to existing and drops every later occurrence of an
// id already present. The first occurrence keeps its position, so merging
// the same page twice yields the same list as merging it once.
func MergeUnique[T Identifiable](existing, page []T) []T {
	out := make([]T, 0, len(existing)+len(page))
	seen := make(map[string]bool, len(existing)+len(page))
	for _, list := range [][]T{existing, page} {
		for _, item := range list {
			id := item.GetID()
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, item)
		}
	}
	return out
}

// ProjectDocuments converts raw search records into the list shape. The
// amount is only kept when showAmount is set.
func ProjectDocuments(raw []model.Document, showAmount bool) []model.Document {
	docs := make([]model.Document, 0, len(raw))
	for _, r := range raw {
		d := model.Document{
			ID:              r.ID,
			Title:           r.Title,
			FileName:        r.FileName,
			EncodedFilename: base64.StdEncoding.EncodeToString([]byte(url.PathEscape(r.FileName))),
			PreviewLink:     r.PreviewLink,
			Created:         r.Created,
			Modified:        r.Modified,
			Tags:            r.Tags,
			Senders:         r.Senders,
			InvoiceNumber:   r.InvoiceNumber,
		}
		if showAmount {
			d.Amount = r.Amount
		}
		docs = append(docs, d)
	}
	return docs
}
