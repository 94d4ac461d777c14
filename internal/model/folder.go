package model

// RootName is the display name the backend uses for the top-level folder.
const RootName = "Root"

// Folder is the folder entity returned by the folder lookup.
type Folder struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
	Favicon     string `json:"favicon"`

	// IsRoot is derived at the API boundary, see NewFolder.
	IsRoot bool `json:"-"`
}

// NewFolder converts a folder-typed bookmark into a Folder and derives the
// root flag from the backend's sentinel display name.
func NewFolder(b Bookmark) Folder {
	return Folder{
		ID:          b.ID,
		Path:        b.Path,
		DisplayName: b.DisplayName,
		Favicon:     b.Favicon,
		IsRoot:      b.DisplayName == RootName,
	}
}

// HasFavicon reports whether the folder carries its own favicon.
func (f Folder) HasFavicon() bool {
	return f.Favicon != ""
}
