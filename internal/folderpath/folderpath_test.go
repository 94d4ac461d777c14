package folderpath_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantNames    []string
		wantPrefixes []string
	}{
		{"root", "/", []string{"/"}, []string{"/"}},
		{"empty defaults to root", "", []string{"/"}, []string{"/"}},
		{"double slash is root", "//", []string{"/"}, []string{"/"}},
		{"single level", "/Development", []string{"/", "Development"}, []string{"/", "/Development"}},
		{"nested", "/a/b/c", []string{"/", "a", "b", "c"}, []string{"/", "/a", "/a/b", "/a/b/c"}},
		{"trailing slash dropped", "/a/b/", []string{"/", "a", "b"}, []string{"/", "/a", "/a/b"}},
		{"relative made absolute", "a/b", []string{"/", "a", "b"}, []string{"/", "/a", "/a/b"}},
		{"inner double slash", "/a//b", []string{"/", "a", "b"}, []string{"/", "/a", "/a/b"}},
		{"leading double slash", "//Read-Later", []string{"/", "Read-Later"}, []string{"/", "/Read-Later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := folderpath.Parse(tt.path)
			assert.DeepEqual(t, got.Names, tt.wantNames)
			assert.DeepEqual(t, got.Prefixes, tt.wantPrefixes)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	paths := []string{"/", "//", "", "/a", "/a/b/", "a//b///c", "/Read-Later", "/x/y/z/"}

	for _, p := range paths {
		first := folderpath.Parse(p)
		second := folderpath.Parse(first.Path())
		assert.DeepEqual(t, first, second)

		// parsing one of its own prefixes yields that prefix back
		for _, prefix := range first.Prefixes {
			assert.Equal(t, folderpath.Parse(prefix).Path(), prefix)
		}
	}
}

func TestParse_RootForms(t *testing.T) {
	assert.DeepEqual(t, folderpath.Parse("//"), folderpath.Parse("/"))
}

func TestSegments_ParentAndName(t *testing.T) {
	s := folderpath.Parse("/a/b")
	assert.Equal(t, s.Name(), "b")
	assert.Equal(t, s.Parent(), "/a")
	assert.Equal(t, s.Len(), 3)

	root := folderpath.Parse("/")
	assert.Equal(t, root.Name(), "/")
	assert.Equal(t, root.Parent(), "/")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, folderpath.Normalize("/a//b"), "/a/b")
	assert.Equal(t, folderpath.Normalize("///"), "/")
	assert.Equal(t, folderpath.Normalize("/a/b"), "/a/b")
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, folderpath.Absolute(""), "/")
	assert.Equal(t, folderpath.Absolute("Read-Later"), "/Read-Later")
	assert.Equal(t, folderpath.Absolute("/Read-Later"), "/Read-Later")
}

func TestJoin(t *testing.T) {
	assert.Equal(t, folderpath.Join("/", "Dev"), "/Dev")
	assert.Equal(t, folderpath.Join("/Dev", "Go"), "/Dev/Go")
	assert.Equal(t, folderpath.Join("/Dev/", "/Go/"), "/Dev/Go")
	assert.Equal(t, folderpath.Join("/Dev", ""), "/Dev")
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name   string
		folder model.Folder
		want   string
	}{
		{
			name:   "root ignores raw path",
			folder: model.NewFolder(model.Bookmark{DisplayName: "Root", Path: "/something/odd"}),
			want:   "/",
		},
		{
			name:   "top level folder",
			folder: model.Folder{DisplayName: "Development", Path: "/"},
			want:   "/Development",
		},
		{
			name:   "nested folder without trailing slash",
			folder: model.Folder{DisplayName: "Go", Path: "/Development"},
			want:   "/Development/Go",
		},
		{
			name:   "nested folder with trailing slash",
			folder: model.Folder{DisplayName: "Go", Path: "/Development/"},
			want:   "/Development/Go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, folderpath.Canonical(tt.folder), tt.want)
		})
	}
}

func TestIsWithin(t *testing.T) {
	assert.Assert(t, folderpath.IsWithin("/a/b", "/a"))
	assert.Assert(t, folderpath.IsWithin("/a", "/a"))
	assert.Assert(t, folderpath.IsWithin("/anything", "/"))
	assert.Assert(t, !folderpath.IsWithin("/ab", "/a"))
}
