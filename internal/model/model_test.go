package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
)

func TestBookmark_DecodeBackendJSON(t *testing.T) {
	data := `{
		"id": "b1",
		"path": "/Dev",
		"displayName": "TanStack Router",
		"url": "https://tanstack.com/router",
		"sortOrder": 3,
		"type": "Node",
		"created": "2025-01-15T10:30:00Z",
		"modified": "2025-01-20T14:22:00Z",
		"childCount": 0,
		"accessCount": 7,
		"favicon": "",
		"highlight": 1
	}`

	var got model.Bookmark
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if got.DisplayName != "TanStack Router" || got.Path != "/Dev" {
		t.Errorf("unexpected bookmark %+v", got)
	}
	if got.Modified == nil || got.Modified.Day() != 20 {
		t.Errorf("expected modified to be decoded, got %v", got.Modified)
	}
	if got.SortOrder != 3 || got.AccessCount != 7 || got.Highlight != 1 {
		t.Errorf("unexpected counters %+v", got)
	}
}

func TestBookmark_PositionNotSerialized(t *testing.T) {
	data, err := json.Marshal(model.Bookmark{ID: "b1", Position: 4})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if strings.Contains(string(data), "osition") {
		t.Errorf("position must stay client-side: %s", data)
	}
}

func TestBookmark_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   model.Bookmark
		want model.Bookmark
	}{
		{
			name: "folder drops url",
			in:   model.Bookmark{Type: model.FolderType, URL: "https://x"},
			want: model.Bookmark{Type: model.FolderType},
		},
		{
			name: "unknown type is a node",
			in:   model.Bookmark{Type: "Link", URL: "https://x"},
			want: model.Bookmark{Type: model.NodeType, URL: "https://x"},
		},
		{
			name: "highlight clamped",
			in:   model.Bookmark{Type: model.NodeType, Highlight: 5},
			want: model.Bookmark{Type: model.NodeType, Highlight: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Normalize()
			if got.Type != tt.want.Type || got.URL != tt.want.URL || got.Highlight != tt.want.Highlight {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewBookmark(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Path:        "/Read-Later",
		DisplayName: "Article",
		URL:         "https://example.com/a",
		Highlight:   true,
	})

	if b.ID == "" {
		t.Error("expected generated id")
	}
	if b.Type != model.NodeType || b.Highlight != 1 {
		t.Errorf("unexpected bookmark %+v", b)
	}
	if b.Created.IsZero() {
		t.Error("expected creation time")
	}

	other := model.NewBookmark(model.NewBookmarkParams{DisplayName: "x"})
	if other.ID == b.ID {
		t.Error("expected unique ids")
	}
}

func TestNewFolder_RootFlag(t *testing.T) {
	root := model.NewFolder(model.Bookmark{ID: "r", Path: "/", DisplayName: model.RootName})
	if !root.IsRoot {
		t.Error("expected root folder")
	}

	child := model.NewFolder(model.Bookmark{ID: "c", Path: "/", DisplayName: "Rooted", Favicon: "f.ico"})
	if child.IsRoot {
		t.Error("expected regular folder")
	}
	if !child.HasFavicon() || root.HasFavicon() {
		t.Error("unexpected favicon flags")
	}
}

func TestListing(t *testing.T) {
	l := model.Listing{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	clone := l.Clone()
	clone[0].ID = "z"
	if l[0].ID != "a" {
		t.Error("clone must not share the backing array")
	}

	if l.IndexOf("c") != 2 || l.IndexOf("nope") != -1 {
		t.Error("unexpected IndexOf results")
	}
	if b := l.ByID("b"); b == nil || b.ID != "b" {
		t.Error("expected to find b")
	}

	l.Number()
	for i, b := range l {
		if b.Position != i+1 {
			t.Errorf("item %d: expected position %d, got %d", i, i+1, b.Position)
		}
	}

	if model.Listing(nil).Clone() != nil {
		t.Error("clone of nil must be nil")
	}
}

func TestSortOrderBatch(t *testing.T) {
	batch := model.NewSortOrderBatch(model.Listing{{ID: "b"}, {ID: "c"}, {ID: "a"}})

	want := []string{"b", "c", "a"}
	for i := range want {
		if batch.IDs[i] != want[i] || batch.SortOrder[i] != i {
			t.Errorf("position %d: got %s/%d", i, batch.IDs[i], batch.SortOrder[i])
		}
	}
	if err := batch.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	broken := model.SortOrderBatch{IDs: []string{"a"}, SortOrder: []int{}}
	if err := broken.Validate(); err == nil {
		t.Error("expected length mismatch error")
	}

	data, _ := json.Marshal(batch)
	if string(data) != `{"ids":["b","c","a"],"sortOrder":[0,1,2]}` {
		t.Errorf("unexpected wire format %s", data)
	}
}

func TestDocumentDraft_Validate(t *testing.T) {
	complete := model.DocumentDraft{
		Title:           "Invoice",
		FileName:        "invoice.pdf",
		UploadFileToken: "tok",
		Senders:         []string{"ACME"},
	}
	if err := complete.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := model.DocumentDraft{Title: "  "}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, missing := range []string{"title", "file", "sender"} {
		if !strings.Contains(err.Error(), missing) {
			t.Errorf("expected %q in %q", missing, err.Error())
		}
	}
}

func TestCache(t *testing.T) {
	c := model.NewCache()
	c.Identity = &model.Identity{UserName: "alice", Roles: []string{"Admin"}}

	c.PutFolder(model.CachedFolder{Path: "/A", Items: []model.Bookmark{{ID: "1"}}})
	c.PutFolder(model.CachedFolder{Path: "/A", Items: []model.Bookmark{{ID: "2"}}})
	c.PutFolder(model.CachedFolder{Path: "/B"})

	if len(c.Folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(c.Folders))
	}
	if c.GetFolder("/A").Items[0].ID != "2" {
		t.Error("expected listing to be replaced")
	}
	if c.GetFolder("/C") != nil {
		t.Error("expected nil for unknown path")
	}
	if !c.Identity.IsAdmin() {
		t.Error("expected admin")
	}

	c.ClearIdentity()
	if c.Identity != nil {
		t.Error("expected identity to be cleared")
	}
}
