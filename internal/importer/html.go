// Package importer reads Netscape bookmark files and recreates their folder
// tree on the backend.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/model"
)

// ParseHTML parses Netscape bookmark HTML into items placed below basePath.
// Items are returned in document order, so every folder precedes its
// children. SortOrder numbers the items inside their parent folder.
func ParseHTML(r io.Reader, basePath string) ([]model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var items []model.Bookmark
	pathStack := []string{folderpath.Clean(basePath)}
	childCount := map[string]int{}
	pendingFolder := "" // path of a folder waiting for its DL

	current := func() string { return pathStack[len(pathStack)-1] }
	add := func(b model.Bookmark) {
		b.SortOrder = childCount[b.Path]
		childCount[b.Path]++
		items = append(items, b)
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := strings.Trim(getTextContent(n), "/")
				if name != "" {
					parent := current()
					add(model.Bookmark{
						ID:          model.GenerateUUID(),
						Path:        parent,
						DisplayName: name,
						Type:        model.FolderType,
						Created:     parseAddDate(n),
					})
					pendingFolder = folderpath.Join(parent, name)
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				add(model.Bookmark{
					ID:          model.GenerateUUID(),
					Path:        current(),
					DisplayName: title,
					URL:         href,
					Type:        model.NodeType,
					Created:     parseAddDate(n),
				})
				return

			case "dl":
				pushed := false
				if pendingFolder != "" {
					pathStack = append(pathStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					pathStack = pathStack[:len(pathStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	for i := range items {
		if items[i].IsFolder() {
			items[i].ChildCount = childCount[folderpath.Join(items[i].Path, items[i].DisplayName)]
		}
	}
	return items, nil
}

func parseAddDate(n *html.Node) time.Time {
	if addDate := getAttr(n, "add_date"); addDate != "" {
		if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
			return time.Unix(ts, 0)
		}
	}
	return time.Now()
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

// Creator stores a new item on the backend and returns its id.
type Creator interface {
	CreateBookmark(ctx context.Context, b model.Bookmark) (string, error)
}

// Result counts the outcome of a push.
type Result struct {
	Created int
	Skipped int // below a folder that could not be created
	Failed  []error
}

// Push creates items in order. When a folder fails, everything below it is
// skipped. Authentication failures and cancellation abort the push.
func Push(ctx context.Context, creator Creator, items []model.Bookmark, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Result
	var failedFolders []string

	for _, b := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if below(b.Path, failedFolders) {
			res.Skipped++
			continue
		}

		_, err := creator.CreateBookmark(ctx, b)
		if err != nil {
			if apperr.IsAuth(err) || errors.Is(err, context.Canceled) {
				return res, err
			}
			logger.Warn("import failed",
				zap.String("path", b.Path),
				zap.String("name", b.DisplayName),
				zap.Error(err))
			res.Failed = append(res.Failed, fmt.Errorf("%s: %w", folderpath.Join(b.Path, b.DisplayName), err))
			if b.IsFolder() {
				failedFolders = append(failedFolders, folderpath.Join(b.Path, b.DisplayName))
			}
			continue
		}
		res.Created++
	}
	return res, nil
}

func below(path string, folders []string) bool {
	for _, f := range folders {
		if folderpath.IsWithin(path, f) {
			return true
		}
	}
	return false
}
