package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmr/internal/model"
)

// cli runs the root command against a fake backend with an isolated home
// directory. The home directory is shared by all runs of one cli.
type cli struct {
	t *testing.T
}

func newCLI(t *testing.T, backend http.Handler) *cli {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("BMR_BASE_URL", srv.URL)
	t.Setenv("BMR_TOKEN", "secret")
	return &cli{t: t}
}

func (c *cli) run(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	configPath = ""
	verbose = false
	lsCached = false
	searchInteractive, searchYank, searchOpen = false, false, false
	addFolder = false
	sitesPerms = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	env.close()
	env = nil
	return out.String(), errOut.String(), err
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// fakeBackend serves a root folder with three links and records writes.
type fakeBackend struct {
	t *testing.T

	mu         sync.Mutex
	batches    []model.SortOrderBatch
	created    []model.Bookmark
	rejectSort bool

	sites         []model.SiteInfo
	sitesEditable bool
	siteSaves     int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/bookmarks/folder":
		path := r.URL.Query().Get("path")
		if path == "/" {
			writeJSON(f.t, w, map[string]any{"success": true, "value": map[string]any{
				"id": "root", "path": "/", "displayName": "Root", "type": "Folder"}})
			return
		}
		writeJSON(f.t, w, map[string]any{"success": true, "value": map[string]any{
			"id": "f-" + path, "path": "/", "displayName": strings.TrimPrefix(path, "/"), "type": "Folder"}})
	case r.URL.Path == "/api/v1/bookmarks/bypath":
		writeJSON(f.t, w, map[string]any{"success": true, "value": []map[string]any{
			{"id": "a", "path": "/", "displayName": "Alpha", "url": "https://a.example", "sortOrder": 0, "type": "Node"},
			{"id": "b", "path": "/", "displayName": "Beta", "url": "https://b.example", "sortOrder": 1, "type": "Node"},
			{"id": "c", "path": "/", "displayName": "Gamma", "url": "https://c.example", "sortOrder": 2, "type": "Node"},
		}})
	case r.URL.Path == "/api/v1/bookmarks/sortorder" && r.Method == http.MethodPut:
		var batch model.SortOrderBatch
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			f.t.Errorf("decode batch: %v", err)
		}
		f.mu.Lock()
		f.batches = append(f.batches, batch)
		reject := f.rejectSort
		f.mu.Unlock()
		writeJSON(f.t, w, map[string]any{"success": !reject})
	case r.URL.Path == "/api/v1/bookmarks" && r.Method == http.MethodPost:
		var b model.Bookmark
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			f.t.Errorf("decode bookmark: %v", err)
		}
		f.mu.Lock()
		f.created = append(f.created, b)
		f.mu.Unlock()
		writeJSON(f.t, w, map[string]any{"success": true, "value": "new-id"})
	case strings.HasPrefix(r.URL.Path, "/api/v1/bookmarks/") && r.Method == http.MethodDelete:
		writeJSON(f.t, w, map[string]any{"success": true})
	case r.URL.Path == "/api/v1/sites" && r.Method == http.MethodGet:
		f.mu.Lock()
		sites := model.UserSites{User: "alice", Editable: f.sitesEditable, Sites: f.sites}
		f.mu.Unlock()
		writeJSON(f.t, w, sites)
	case r.URL.Path == "/api/v1/sites" && r.Method == http.MethodPost:
		var sites []model.SiteInfo
		if err := json.NewDecoder(r.Body).Decode(&sites); err != nil {
			f.t.Errorf("decode sites: %v", err)
		}
		f.mu.Lock()
		f.sites = sites
		f.siteSaves++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	case r.URL.Path == "/api/v1/core/whoami":
		w.WriteHeader(http.StatusUnauthorized)
	default:
		http.NotFound(w, r)
	}
}

func TestLs_Root(t *testing.T) {
	c := newCLI(t, &fakeBackend{t: t})

	out, _, err := c.run("ls")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "Bookmarks"), out)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		assert.Assert(t, strings.Contains(out, name), out)
	}
}

func TestLs_CachedAfterFetch(t *testing.T) {
	c := newCLI(t, &fakeBackend{t: t})

	_, _, err := c.run("ls", "/")
	assert.NilError(t, err)

	out, _, err := c.run("ls", "--cached", "/")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "Gamma"), out)

	_, _, err = c.run("ls", "--cached", "/Never")
	assert.ErrorContains(t, err, "no cached listing for /Never")
}

func TestMv_SendsRenumbering(t *testing.T) {
	backend := &fakeBackend{t: t}
	c := newCLI(t, backend)

	out, _, err := c.run("mv", "/", "1", "3")
	assert.NilError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, len(backend.batches), 1)
	assert.DeepEqual(t, backend.batches[0].IDs, []string{"b", "c", "a"})
	assert.DeepEqual(t, backend.batches[0].SortOrder, []int{0, 1, 2})

	assert.Assert(t, strings.Index(out, "Beta") < strings.Index(out, "Alpha"), out)
}

func TestMv_RejectedKeepsOrder(t *testing.T) {
	backend := &fakeBackend{t: t, rejectSort: true}
	c := newCLI(t, backend)

	out, errOut, err := c.run("mv", "/", "1", "2")
	var r reportedError
	assert.Assert(t, errors.As(err, &r))
	assert.Assert(t, strings.Contains(errOut, "could not update the bookmarks sort-order!"), errOut)
	assert.Assert(t, !strings.Contains(out, "Alpha"), out)
}

func TestMv_InvalidPosition(t *testing.T) {
	c := newCLI(t, &fakeBackend{t: t})

	_, _, err := c.run("mv", "/", "0", "1")
	assert.ErrorContains(t, err, `invalid position "0"`)
	var r reportedError
	assert.Assert(t, !errors.As(err, &r))
}

func TestAdd_HighlightsReadLater(t *testing.T) {
	backend := &fakeBackend{t: t}
	c := newCLI(t, backend)

	_, _, err := c.run("add", "/Read-Later/", "Article", "https://article.example")
	assert.NilError(t, err)
	_, _, err = c.run("add", "/Dev", "Docs", "https://docs.example")
	assert.NilError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, len(backend.created), 2)
	assert.Equal(t, backend.created[0].Path, "/Read-Later")
	assert.Equal(t, backend.created[0].Highlight, 1)
	assert.Equal(t, backend.created[1].Highlight, 0)
	assert.Equal(t, backend.created[1].Type, model.NodeType)
}

func TestAdd_Folder(t *testing.T) {
	backend := &fakeBackend{t: t}
	c := newCLI(t, backend)

	_, _, err := c.run("add", "--folder", "/", "Tools")
	assert.NilError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, backend.created[0].Type, model.FolderType)
	assert.Equal(t, backend.created[0].URL, "")
}

func TestWhoami_Unauthorized(t *testing.T) {
	c := newCLI(t, &fakeBackend{t: t})

	_, errOut, err := c.run("whoami")
	var r reportedError
	assert.Assert(t, errors.As(err, &r))
	assert.Assert(t, strings.Contains(errOut, "not authorized, see assets/"), errOut)
}

func TestRm_ToastsSuccess(t *testing.T) {
	c := newCLI(t, &fakeBackend{t: t})

	_, errOut, err := c.run("rm", "b")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(errOut, "Deleted b"), errOut)
}

func TestSites_List(t *testing.T) {
	backend := &fakeBackend{t: t, sites: []model.SiteInfo{
		{Name: "mydms", URL: "https://dms.example", Permissions: []string{"User"}},
	}}
	c := newCLI(t, backend)

	out, _, err := c.run("sites")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "Sites of alice"), out)
	assert.Assert(t, strings.Contains(out, "mydms"), out)
	assert.Assert(t, strings.Contains(out, "https://dms.example"), out)
}

func TestSites_AddReplacesByName(t *testing.T) {
	backend := &fakeBackend{t: t, sitesEditable: true, sites: []model.SiteInfo{
		{Name: "mydms", URL: "https://old.example"},
	}}
	c := newCLI(t, backend)

	_, _, err := c.run("sites", "add", "mydms", "https://dms.example", "--perm", "User", "--perm", "Admin")
	assert.NilError(t, err)
	_, _, err = c.run("sites", "add", "bookmarks", "https://bm.example")
	assert.NilError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.DeepEqual(t, backend.sites, []model.SiteInfo{
		{Name: "mydms", URL: "https://dms.example", Permissions: []string{"User", "Admin"}},
		{Name: "bookmarks", URL: "https://bm.example"},
	})
}

func TestSites_EditRequiresPermission(t *testing.T) {
	backend := &fakeBackend{t: t}
	c := newCLI(t, backend)

	_, errOut, err := c.run("sites", "rm", "mydms")
	var r reportedError
	assert.Assert(t, errors.As(err, &r))
	assert.Assert(t, strings.Contains(errOut, "alice may not edit sites"), errOut)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, backend.siteSaves, 0)
}
