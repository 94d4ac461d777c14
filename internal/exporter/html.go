// Package exporter downloads a folder tree from the backend and writes it as
// Netscape bookmark HTML.
package exporter

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/model"
)

// DefaultConcurrency bounds the folder listings fetched at once.
const DefaultConcurrency = 4

// Lister returns the ordered children of a folder.
type Lister interface {
	BookmarksByPath(ctx context.Context, path string) (model.Listing, error)
}

// Tree is one folder with its listing and the trees of its subfolders.
type Tree struct {
	Path     string
	Items    model.Listing
	Children map[string]*Tree // by canonical path
}

// Walk fetches root and every folder below it. Folders of the same depth are
// fetched concurrently, at most concurrency at a time.
func Walk(ctx context.Context, lister Lister, root string, concurrency int) (*Tree, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	top := &Tree{Path: folderpath.Clean(root)}
	level := []*Tree{top}
	for len(level) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, node := range level {
			node := node
			g.Go(func() error {
				items, err := lister.BookmarksByPath(gctx, node.Path)
				if err != nil {
					return fmt.Errorf("listing %s: %w", node.Path, err)
				}
				node.Items = items
				node.Children = map[string]*Tree{}
				for _, it := range items {
					if it.IsFolder() {
						p := folderpath.Join(node.Path, it.DisplayName)
						node.Children[p] = &Tree{Path: p}
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []*Tree
		for _, node := range level {
			for _, child := range node.Children {
				next = append(next, child)
			}
		}
		level = next
	}
	return top, nil
}

// Count returns the number of folders and links in the tree, root excluded.
func (t *Tree) Count() (folders, links int) {
	for _, it := range t.Items {
		if it.IsFolder() {
			folders++
		} else {
			links++
		}
	}
	for _, child := range t.Children {
		f, l := child.Count()
		folders += f
		links += l
	}
	return folders, links
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the tree in Netscape bookmark HTML format. Items keep
// their listing order.
func ExportHTML(tree *Tree) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	if tree != nil {
		writeItems(&b, tree, 1)
	}

	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeItems(b *strings.Builder, tree *Tree, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, it := range tree.Items {
		timestamp := it.Created.Unix()
		if !it.IsFolder() {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(it.URL),
				timestamp,
				html.EscapeString(it.DisplayName),
			)
			continue
		}

		fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n", prefix, timestamp, html.EscapeString(it.DisplayName))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		if child, ok := tree.Children[folderpath.Join(tree.Path, it.DisplayName)]; ok {
			writeItems(b, child, indent+1)
		}
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}
