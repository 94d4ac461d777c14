package resolver

// Param is what a folder view is opened with: either a folder path or a
// search term, never both.
type Param struct {
	search bool
	value  string
}

// PathParam opens the folder at path. An empty path is the root folder.
func PathParam(path string) Param {
	return Param{value: path}
}

// SearchParam opens the search result for term.
func SearchParam(term string) Param {
	return Param{search: true, value: term}
}

// IsSearch reports whether the parameter is a search term.
func (p Param) IsSearch() bool { return p.search }

// Value returns the path or the search term.
func (p Param) Value() string { return p.value }

func (p Param) String() string {
	if p.search {
		return "search:" + p.value
	}
	return "path:" + p.value
}
