package resolver

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
)

const (
	// DefaultReadLaterPath is the folder whose items are ordered newest and
	// highlighted first.
	DefaultReadLaterPath = "/Read-Later"
	// DefaultFavicon is shown for folders without a favicon of their own.
	DefaultFavicon = "assets/folder.svg"
	// RootTitle is the view title of the root folder.
	RootTitle = "Bookmarks"
)

// Backend is the part of the bookmarks API the resolver needs.
type Backend interface {
	search.BookmarkSearcher
	FolderByPath(ctx context.Context, path string) (model.Folder, error)
	BookmarksByPath(ctx context.Context, path string) (model.Listing, error)
	FaviconURL(id string) string
}

// Cache persists the last listing of every resolved folder.
type Cache interface {
	Load() (*model.Cache, error)
	Save(cache *model.Cache) error
}

// FolderView is everything a view needs to show one folder or one search
// result.
type FolderView struct {
	Folder     model.Folder
	Path       string // canonical
	Segments   folderpath.Segments
	Items      model.Listing
	Title      string
	Favicon    string
	SearchMode bool
	Term       string
}

// Params configures a Resolver.
type Params struct {
	Backend       Backend
	Cache         Cache // optional
	Reporter      *event.Reporter
	Logger        *zap.Logger
	ReadLaterPath string
	PageSize      int
	Debounce      time.Duration
}

// Resolver turns a Param into a FolderView.
type Resolver struct {
	backend   Backend
	cache     Cache
	reporter  *event.Reporter
	logger    *zap.Logger
	readLater string
	search    *search.Controller[model.Bookmark]
}

// New creates a Resolver. Close releases its search controller.
func New(params Params) *Resolver {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	readLater := params.ReadLaterPath
	if readLater == "" {
		readLater = DefaultReadLaterPath
	}
	return &Resolver{
		backend:   params.Backend,
		cache:     params.Cache,
		reporter:  params.Reporter,
		logger:    logger,
		readLater: folderpath.Clean(readLater),
		search: search.NewController(search.Params[model.Bookmark]{
			Fetch:    search.BookmarkFetcher(params.Backend),
			PageSize: params.PageSize,
			Debounce: params.Debounce,
			Reporter: params.Reporter,
			Logger:   logger,
		}),
	}
}

// Search returns the controller serving search parameters, for views that
// feed it keystrokes directly.
func (r *Resolver) Search() *search.Controller[model.Bookmark] {
	return r.search
}

// Close stops pending searches.
func (r *Resolver) Close() {
	r.search.Close()
}

// IsReadLater reports whether path is the Read-Later folder.
func (r *Resolver) IsReadLater(path string) bool {
	return folderpath.Clean(path) == r.readLater
}

// Resolve loads the folder or search result described by p. Failures are
// reported on the bus before they are returned.
func (r *Resolver) Resolve(ctx context.Context, p Param) (FolderView, error) {
	if p.IsSearch() {
		return r.resolveSearch(ctx, p.Value())
	}
	view, err := r.resolvePath(ctx, p.Value())
	if err != nil {
		r.reporter.Fail(err)
		return FolderView{}, err
	}
	return view, nil
}

// Reload resolves path again, typically after the listing was modified.
func (r *Resolver) Reload(ctx context.Context, path string) (FolderView, error) {
	return r.Resolve(ctx, PathParam(path))
}

func (r *Resolver) resolvePath(ctx context.Context, path string) (FolderView, error) {
	requested := folderpath.Absolute(path)

	folder, err := r.backend.FolderByPath(ctx, requested)
	if err != nil {
		return FolderView{}, fmt.Errorf("folder %s: %w", requested, err)
	}
	canonical := folderpath.Canonical(folder)

	items, err := r.backend.BookmarksByPath(ctx, canonical)
	if err != nil {
		return FolderView{}, fmt.Errorf("items of %s: %w", canonical, err)
	}
	if canonical == r.readLater {
		SortReadLater(items)
	}
	items.Number()

	view := FolderView{
		Folder:   folder,
		Path:     canonical,
		Segments: folderpath.Parse(canonical),
		Items:    items,
		Title:    folder.DisplayName,
		Favicon:  DefaultFavicon,
	}
	if folder.IsRoot {
		view.Title = RootTitle
	}
	if folder.HasFavicon() {
		view.Favicon = r.backend.FaviconURL(folder.ID)
	}

	r.logger.Debug("folder resolved",
		zap.String("requested", requested),
		zap.String("path", canonical),
		zap.Int("items", len(items)))

	r.remember(view)
	r.reporter.Bus().Publish(event.ListChangedEvent{Path: canonical, IDs: items.IDs()})
	return view, nil
}

func (r *Resolver) resolveSearch(ctx context.Context, term string) (FolderView, error) {
	state, err := r.search.Search(ctx, term, 0)
	if err != nil {
		return FolderView{}, err
	}
	items := model.Listing(state.Items)
	items.Number()
	return FolderView{
		Path:       folderpath.Root,
		Segments:   folderpath.Parse(folderpath.Root),
		Items:      items,
		Title:      RootTitle,
		Favicon:    DefaultFavicon,
		SearchMode: true,
		Term:       term,
	}, nil
}

func (r *Resolver) remember(view FolderView) {
	if r.cache == nil {
		return
	}
	cache, err := r.cache.Load()
	if err != nil {
		r.logger.Warn("loading cache", zap.Error(err))
		return
	}
	cache.PutFolder(model.CachedFolder{
		Path:      view.Path,
		Folder:    view.Folder,
		Items:     view.Items.Clone(),
		FetchedAt: time.Now(),
	})
	if err := r.cache.Save(cache); err != nil {
		r.logger.Warn("saving cache", zap.Error(err))
	}
}

// SortReadLater orders items highlighted first, then newest first. Items
// equal in both keep their order.
func SortReadLater(items model.Listing) {
	slices.SortStableFunc(items, func(a, b model.Bookmark) int {
		if c := cmp.Compare(b.Highlight, a.Highlight); c != 0 {
			return c
		}
		return b.Created.Compare(a.Created)
	})
}
