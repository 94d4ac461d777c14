package model

import "time"

// Listing is the ordered list of items shown for one folder.
type Listing []Bookmark

// Clone returns a copy of the listing that shares no backing array.
func (l Listing) Clone() Listing {
	if l == nil {
		return nil
	}
	out := make(Listing, len(l))
	copy(out, l)
	return out
}

// IDs returns the item ids in display order.
func (l Listing) IDs() []string {
	ids := make([]string, len(l))
	for i, b := range l {
		ids[i] = b.ID
	}
	return ids
}

// IndexOf returns the position of the item with the given id, or -1.
func (l Listing) IndexOf(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// ByID finds an item by ID, returns nil if not found.
func (l Listing) ByID(id string) *Bookmark {
	if i := l.IndexOf(id); i >= 0 {
		return &l[i]
	}
	return nil
}

// Number assigns 1-based display positions in slice order.
func (l Listing) Number() {
	for i := range l {
		l[i].Position = i + 1
	}
}

// CachedFolder is the last listing seen for a canonical folder path.
type CachedFolder struct {
	Path      string     `json:"path"`
	Folder    Folder     `json:"folder"`
	Items     []Bookmark `json:"items"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// Cache holds client-side state that survives between runs.
type Cache struct {
	Identity *Identity      `json:"identity"` // nil = not known
	Folders  []CachedFolder `json:"folders"`
}

// NewCache creates an empty Cache with initialized slices.
func NewCache() *Cache {
	return &Cache{
		Folders: []CachedFolder{},
	}
}

// GetFolder returns the cached listing for path, or nil.
func (c *Cache) GetFolder(path string) *CachedFolder {
	for i := range c.Folders {
		if c.Folders[i].Path == path {
			return &c.Folders[i]
		}
	}
	return nil
}

// PutFolder inserts or replaces the cached listing for its path.
func (c *Cache) PutFolder(f CachedFolder) {
	if existing := c.GetFolder(f.Path); existing != nil {
		*existing = f
		return
	}
	c.Folders = append(c.Folders, f)
}

// ClearIdentity forgets the cached user.
func (c *Cache) ClearIdentity() {
	c.Identity = nil
}
