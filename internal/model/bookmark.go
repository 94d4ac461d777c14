package model

import "time"

// ItemType distinguishes plain links from folders.
type ItemType string

const (
	NodeType   ItemType = "Node"
	FolderType ItemType = "Folder"
)

// Bookmark is a single entry of a folder listing as served by the backend.
type Bookmark struct {
	ID            string     `json:"id"`
	Path          string     `json:"path"` // parent folder, absolute
	DisplayName   string     `json:"displayName"`
	URL           string     `json:"url,omitempty"`
	SortOrder     int        `json:"sortOrder"`
	Type          ItemType   `json:"type"`
	Created       time.Time  `json:"created"`
	Modified      *time.Time `json:"modified,omitempty"`
	ChildCount    int        `json:"childCount"`
	AccessCount   int        `json:"accessCount"`
	Favicon       string     `json:"favicon"`
	CustomFavicon string     `json:"customFavicon,omitempty"`
	Highlight     int        `json:"highlight"`

	// Position is the 1-based display position inside the current view.
	Position int `json:"-"`
}

// IsFolder returns true for folder entries.
func (b Bookmark) IsFolder() bool {
	return b.Type == FolderType
}

// Normalize enforces the item invariants: folders never carry a URL and
// an unknown type is treated as a node.
func (b *Bookmark) Normalize() {
	if b.Type != FolderType {
		b.Type = NodeType
	}
	if b.Type == FolderType {
		b.URL = ""
	}
	if b.Highlight != 0 {
		b.Highlight = 1
	}
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Path        string
	DisplayName string
	URL         string
	Type        ItemType
	Highlight   bool
}

// NewBookmark creates a Bookmark with generated UUID and timestamp.
func NewBookmark(params NewBookmarkParams) Bookmark {
	b := Bookmark{
		ID:          GenerateUUID(),
		Path:        params.Path,
		DisplayName: params.DisplayName,
		URL:         params.URL,
		Type:        params.Type,
		Created:     time.Now(),
	}
	if params.Highlight {
		b.Highlight = 1
	}
	b.Normalize()
	return b
}
