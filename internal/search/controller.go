package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
)

const (
	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 20
	// DefaultDebounce is the quiet period after the last input before a
	// search is issued.
	DefaultDebounce = 500 * time.Millisecond
)

// ErrSuperseded is returned for a search whose result arrived after a newer
// search was started. The result was discarded.
var ErrSuperseded = errors.New("search superseded by a newer one")

// Page is one page of results as returned by a Fetcher.
type Page[T any] struct {
	Items        []T
	TotalEntries int
}

// Fetcher loads one page of results for term.
type Fetcher[T any] func(ctx context.Context, term string, limit, skip int) (Page[T], error)

// State is the accumulated result list of a controller.
type State[T any] struct {
	Term         string
	Items        []T
	TotalEntries int
	Shown        int // skip + returned count of the last page
}

// HasMore reports whether another page can be requested.
func (s State[T]) HasMore() bool {
	return s.Shown < s.TotalEntries
}

// Params configures a Controller.
type Params[T any] struct {
	Fetch    Fetcher[T]
	PageSize int
	Debounce time.Duration
	Reporter *event.Reporter
	Logger   *zap.Logger
}

// Controller issues paginated searches and merges the pages into one
// de-duplicated list. Only the latest search may update the list: starting a
// new search cancels a running one for a different term or offset, and a
// generation counter discards results that arrive late.
type Controller[T Identifiable] struct {
	fetch    Fetcher[T]
	pageSize int
	debounce time.Duration
	reporter *event.Reporter
	logger   *zap.Logger
	group    singleflight.Group

	mu          sync.Mutex
	state       State[T]
	generation  uint64
	inflightKey string
	cancel      context.CancelFunc
	pending     string
	timer       *time.Timer
	updates     chan State[T]
	closed      bool
	ctx         context.Context
	stop        context.CancelFunc
}

// NewController creates a Controller.
func NewController[T Identifiable](params Params[T]) *Controller[T] {
	ctx, stop := context.WithCancel(context.Background())
	c := &Controller[T]{
		fetch:    params.Fetch,
		pageSize: params.PageSize,
		debounce: params.Debounce,
		reporter: params.Reporter,
		logger:   params.Logger,
		updates:  make(chan State[T], 1),
		ctx:      ctx,
		stop:     stop,
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.debounce <= 0 {
		c.debounce = DefaultDebounce
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// State returns a copy of the current result list.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller[T]) snapshot() State[T] {
	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	return s
}

// Updates delivers the state after every debounced search. Only the latest
// state is buffered.
func (c *Controller[T]) Updates() <-chan State[T] {
	return c.updates
}

// Search fetches the page at skip for term and merges it into the list. A
// zero skip or a new term starts a fresh list.
func (c *Controller[T]) Search(ctx context.Context, term string, skip int) (State[T], error) {
	key := fmt.Sprintf("%q@%d", term, skip)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil && c.inflightKey != key {
		c.cancel()
		// A later search for the cancelled key must not join its flight.
		c.group.Forget(c.inflightKey)
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inflightKey = key
	c.mu.Unlock()
	defer cancel()

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.fetch(reqCtx, term, c.pageSize, skip)
	})
	if shared {
		c.logger.Debug("search coalesced", zap.String("key", key))
	}

	c.mu.Lock()
	if gen != c.generation {
		s := c.snapshot()
		c.mu.Unlock()
		return s, ErrSuperseded
	}
	c.cancel = nil
	c.inflightKey = ""

	if err != nil {
		s := c.snapshot()
		c.mu.Unlock()
		c.reporter.Fail(err)
		return s, err
	}

	page := v.(Page[T])
	if skip == 0 || term != c.state.Term {
		c.state.Items = nil
	}
	c.state.Term = term
	c.state.Items = MergeUnique(c.state.Items, page.Items)
	c.state.TotalEntries = page.TotalEntries
	c.state.Shown = skip + len(page.Items)
	s := c.snapshot()
	c.mu.Unlock()

	c.logger.Debug("search result",
		zap.String("term", term),
		zap.Int("skip", skip),
		zap.Int("returned", len(page.Items)),
		zap.Int("total", page.TotalEntries))

	return s, nil
}

// ShowMore requests the page after the last one shown for the current term.
func (c *Controller[T]) ShowMore(ctx context.Context) (State[T], error) {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	if !s.HasMore() {
		return c.State(), nil
	}
	return c.Search(ctx, s.Term, s.Shown)
}

// Input records a new search term. The search is issued once no further
// input arrived for the debounce period; its result is sent to Updates.
func (c *Controller[T]) Input(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = term
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, c.fire)
		return
	}
	c.timer.Reset(c.debounce)
}

func (c *Controller[T]) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	term := c.pending
	ctx := c.ctx
	c.mu.Unlock()

	state, err := c.Search(ctx, term, 0)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case <-c.updates:
	default:
	}
	c.updates <- state
}

// Close stops the debounce timer and cancels running searches. Updates is
// closed afterwards.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.stop()
	close(c.updates)
}

// BookmarkSearcher is the backend search by display name.
type BookmarkSearcher interface {
	BookmarksByName(ctx context.Context, name string) (model.Listing, error)
}

// BookmarkFetcher adapts the unpaged name search to a Fetcher. All matches
// are returned with the first page.
func BookmarkFetcher(svc BookmarkSearcher) Fetcher[model.Bookmark] {
	return func(ctx context.Context, term string, limit, skip int) (Page[model.Bookmark], error) {
		if skip > 0 {
			return Page[model.Bookmark]{TotalEntries: skip}, nil
		}
		items, err := svc.BookmarksByName(ctx, term)
		if err != nil {
			return Page[model.Bookmark]{}, err
		}
		ranked := RankBookmarks(items, term)
		return Page[model.Bookmark]{Items: ranked, TotalEntries: len(ranked)}, nil
	}
}
