package model

import (
	"fmt"
	"strings"
	"time"
)

// Document is a MyDMS document as shown in the document list.
type Document struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	FileName        string     `json:"fileName"`
	EncodedFilename string     `json:"encodedFilename,omitempty"`
	AlternativeID   string     `json:"alternativeId,omitempty"`
	PreviewLink     string     `json:"previewLink"`
	Amount          float64    `json:"amount"`
	Created         time.Time  `json:"created"`
	Modified        *time.Time `json:"modified,omitempty"`
	Tags            []string   `json:"tags"`
	Senders         []string   `json:"senders"`
	InvoiceNumber   string     `json:"invoiceNumber,omitempty"`
}

// LastDate returns the later of created and modified.
func (d Document) LastDate() time.Time {
	if d.Modified != nil && d.Modified.After(d.Created) {
		return *d.Modified
	}
	return d.Created
}

// GetID implements the identity needed for merging result pages.
func (d Document) GetID() string { return d.ID }

// GetID implements the identity needed for merging result pages.
func (b Bookmark) GetID() string { return b.ID }

// DocumentDraft is the payload for saving a document after its file was
// uploaded.
type DocumentDraft struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	FileName        string   `json:"fileName"`
	UploadFileToken string   `json:"uploadFileToken"`
	Amount          float64  `json:"amount"`
	Tags            []string `json:"tags"`
	Senders         []string `json:"senders"`
	InvoiceNumber   string   `json:"invoiceNumber,omitempty"`
}

// Validate checks that the draft is complete: a title, an uploaded file and
// at least one sender.
func (d DocumentDraft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if d.FileName == "" || d.UploadFileToken == "" {
		missing = append(missing, "file")
	}
	if len(d.Senders) == 0 {
		missing = append(missing, "sender")
	}
	if len(missing) > 0 {
		return fmt.Errorf("document is incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
