package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
)

// FolderByPath looks up the folder entity for an absolute path.
func (c *Client) FolderByPath(ctx context.Context, path string) (model.Folder, error) {
	var res bookmarkResult
	err := c.do(ctx, request{
		method: http.MethodGet,
		url:    c.bookmarksURL + "/folder?path=" + url.QueryEscape(path),
	}, &res)
	if err != nil {
		return model.Folder{}, err
	}
	if !res.Success {
		return model.Folder{}, apperr.Backend(res.Message)
	}
	return model.NewFolder(res.Value), nil
}

// BookmarksByPath returns the children of the folder at path.
func (c *Client) BookmarksByPath(ctx context.Context, path string) (model.Listing, error) {
	return c.list(ctx, c.bookmarksURL+"/bypath?path="+url.QueryEscape(path))
}

// BookmarksByName searches items by display name.
func (c *Client) BookmarksByName(ctx context.Context, name string) (model.Listing, error) {
	return c.list(ctx, c.bookmarksURL+"/byname?name="+url.QueryEscape(name))
}

// MostVisited returns the n most visited items.
func (c *Client) MostVisited(ctx context.Context, n int) (model.Listing, error) {
	return c.list(ctx, fmt.Sprintf("%s/mostvisited/%d", c.bookmarksURL, n))
}

func (c *Client) list(ctx context.Context, u string) (model.Listing, error) {
	var res bookmarkList
	if err := c.do(ctx, request{method: http.MethodGet, url: u}, &res); err != nil {
		return nil, err
	}
	items := make(model.Listing, 0, len(res.Value))
	for _, b := range res.Value {
		b.Normalize()
		items = append(items, b)
	}
	return items, nil
}

// BookmarkByID fetches a single item.
func (c *Client) BookmarkByID(ctx context.Context, id string) (model.Bookmark, error) {
	var b model.Bookmark
	err := c.do(ctx, request{
		method: http.MethodGet,
		url:    c.bookmarksURL + "/" + url.PathEscape(id),
	}, &b)
	if err != nil {
		return model.Bookmark{}, err
	}
	b.Normalize()
	return b, nil
}

// CreateBookmark stores a new item and returns the id assigned by the backend.
func (c *Client) CreateBookmark(ctx context.Context, b model.Bookmark) (string, error) {
	b.Normalize()
	res, err := c.write(ctx, http.MethodPost, c.bookmarksURL, b)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// UpdateBookmark replaces an existing item.
func (c *Client) UpdateBookmark(ctx context.Context, b model.Bookmark) (Result, error) {
	b.Normalize()
	return c.write(ctx, http.MethodPut, c.bookmarksURL, b)
}

// DeleteBookmark removes an item by id.
func (c *Client) DeleteBookmark(ctx context.Context, id string) (Result, error) {
	return c.write(ctx, http.MethodDelete, c.bookmarksURL+"/"+url.PathEscape(id), nil)
}

// write sends a mutation and turns success=false into a backend error.
func (c *Client) write(ctx context.Context, method, u string, body any) (Result, error) {
	var res Result
	req := request{method: method, url: u}
	if body != nil {
		req.body = body
	}
	if err := c.do(ctx, req, &res); err != nil {
		return Result{}, err
	}
	if !res.Success {
		return res, apperr.Backend(res.Message)
	}
	return res, nil
}

// UpdateSortOrder submits a full renumbering of a folder. The result is
// returned as-is: a negative acknowledgement is for the caller to handle.
func (c *Client) UpdateSortOrder(ctx context.Context, batch model.SortOrderBatch) (Result, error) {
	if err := batch.Validate(); err != nil {
		return Result{}, apperr.Validation("%v", err)
	}
	var res Result
	err := c.do(ctx, request{
		method: http.MethodPut,
		url:    c.bookmarksURL + "/sortorder",
		body:   batch,
	}, &res)
	return res, err
}

// AllPaths returns every folder path known to the backend.
func (c *Client) AllPaths(ctx context.Context) ([]string, error) {
	var res pathsResult
	if err := c.do(ctx, request{method: http.MethodGet, url: c.bookmarksURL + "/allpaths"}, &res); err != nil {
		return nil, err
	}
	return res.Paths, nil
}

// FaviconURL is the endpoint serving the stored favicon of an item.
func (c *Client) FaviconURL(id string) string {
	return c.bookmarksURL + "/favicon/" + url.PathEscape(id)
}

// FetchURL is the endpoint that counts a visit and redirects to the item URL.
func (c *Client) FetchURL(id string) string {
	return c.bookmarksURL + "/fetch/" + url.PathEscape(id)
}
