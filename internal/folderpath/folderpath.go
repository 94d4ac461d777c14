// Package folderpath turns slash-delimited folder paths into breadcrumb
// segments and derives the canonical display path of a folder.
package folderpath

import (
	"strings"

	"github.com/nikbrunner/bmr/internal/model"
)

// Root is the path and the segment name of the top-level folder.
const Root = "/"

// Segments is the breadcrumb form of a canonical path. Names and Prefixes are
// index-aligned: Prefixes[i] is the absolute path of Names[0..i].
type Segments struct {
	Names    []string
	Prefixes []string
}

// Normalize collapses every run of slashes into a single slash.
func Normalize(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Absolute returns the root for an empty path and prefixes relative paths
// with a slash.
func Absolute(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return Root
	}
	if !strings.HasPrefix(p, Root) {
		p = Root + p
	}
	return Normalize(p)
}

// Parse splits path into breadcrumb segments. The leading empty element
// becomes the root segment and a trailing slash is dropped.
func Parse(path string) Segments {
	parts := strings.Split(Absolute(path), "/")
	parts[0] = Root
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	prefixes := make([]string, 0, len(parts))
	abs := ""
	for _, e := range parts {
		if abs != "" && !strings.HasSuffix(abs, "/") {
			abs += "/"
		}
		abs += e
		prefixes = append(prefixes, abs)
	}

	return Segments{Names: parts, Prefixes: prefixes}
}

// Path reconstructs the canonical path the segments were parsed from.
func (s Segments) Path() string {
	if len(s.Prefixes) == 0 {
		return Root
	}
	return s.Prefixes[len(s.Prefixes)-1]
}

// Len returns the number of segments.
func (s Segments) Len() int {
	return len(s.Names)
}

// Name returns the last segment name, the folder's own name.
func (s Segments) Name() string {
	if len(s.Names) == 0 {
		return Root
	}
	return s.Names[len(s.Names)-1]
}

// Parent returns the canonical path of the containing folder. The parent of
// the root is the root.
func (s Segments) Parent() string {
	if len(s.Prefixes) < 2 {
		return Root
	}
	return s.Prefixes[len(s.Prefixes)-2]
}

// Clean returns the canonical form of path.
func Clean(path string) string {
	return Parse(path).Path()
}

// Join appends a folder name to a parent path.
func Join(parent, name string) string {
	name = strings.Trim(name, "/")
	if name == "" {
		return Clean(parent)
	}
	return Clean(Clean(parent) + "/" + name)
}

// Canonical returns the display path of a folder: its parent path followed by
// its own name. The root folder always maps to the root path.
func Canonical(f model.Folder) string {
	if f.IsRoot {
		return Root
	}
	p := f.Path
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return Clean(p + f.DisplayName)
}

// IsWithin reports whether path equals base or lies below it.
func IsWithin(path, base string) bool {
	path, base = Clean(path), Clean(base)
	if base == Root || path == base {
		return true
	}
	return strings.HasPrefix(path, base+"/")
}
