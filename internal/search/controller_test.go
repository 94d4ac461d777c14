package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDocuments serves a fixed corpus of documents in pages.
type fakeDocuments struct {
	mu     sync.Mutex
	corpus []model.Document
	calls  []string
	block  map[string]chan struct{} // term -> released when closed
}

func newFakeDocuments(n int) *fakeDocuments {
	corpus := make([]model.Document, n)
	for i := range corpus {
		corpus[i] = model.Document{ID: fmt.Sprintf("d%02d", i), Title: "doc", Amount: float64(i)}
	}
	return &fakeDocuments{corpus: corpus, block: map[string]chan struct{}{}}
}

func (f *fakeDocuments) SearchDocuments(ctx context.Context, title string, limit, skip int) (api.DocumentPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("%s@%d", title, skip))
	wait := f.block[title]
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return api.DocumentPage{}, ctx.Err()
		}
	}

	end := min(skip+limit, len(f.corpus))
	if skip > end {
		skip = end
	}
	return api.DocumentPage{Documents: f.corpus[skip:end], TotalEntries: len(f.corpus)}, nil
}

func (f *fakeDocuments) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newDocController(svc DocumentSearcher, debounce time.Duration) *Controller[model.Document] {
	return NewController(Params[model.Document]{
		Fetch:    DocumentFetcher(svc, func() bool { return false }),
		Debounce: debounce,
	})
}

func TestController_Paging(t *testing.T) {
	svc := newFakeDocuments(45)
	c := newDocController(svc, 0)
	defer c.Close()
	ctx := context.Background()

	s, err := c.Search(ctx, "", 0)
	assert.NilError(t, err)
	assert.Equal(t, len(s.Items), DefaultPageSize)
	assert.Equal(t, s.Shown, 20)
	assert.Equal(t, s.TotalEntries, 45)
	assert.Assert(t, s.HasMore())

	s, err = c.ShowMore(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(s.Items), 40)
	assert.Equal(t, s.Shown, 40)

	s, err = c.ShowMore(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(s.Items), 45)
	assert.Equal(t, s.Shown, 45)
	assert.Assert(t, !s.HasMore())

	// nothing left to fetch
	_, err = c.ShowMore(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, svc.Calls(), []string{"@0", "@20", "@40"})
}

func TestController_DuplicatePageIsIdempotent(t *testing.T) {
	svc := newFakeDocuments(45)
	c := newDocController(svc, 0)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Search(ctx, "doc", 0)
	assert.NilError(t, err)
	once, err := c.Search(ctx, "doc", 20)
	assert.NilError(t, err)
	twice, err := c.Search(ctx, "doc", 20)
	assert.NilError(t, err)

	assert.Equal(t, len(twice.Items), len(once.Items))
	assert.Equal(t, len(twice.Items), 40)
}

func TestController_NewTermResetsList(t *testing.T) {
	svc := newFakeDocuments(45)
	c := newDocController(svc, 0)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Search(ctx, "a", 0)
	assert.NilError(t, err)
	_, err = c.ShowMore(ctx)
	assert.NilError(t, err)

	s, err := c.Search(ctx, "b", 0)
	assert.NilError(t, err)
	assert.Equal(t, len(s.Items), 20)
	assert.Equal(t, s.Term, "b")
}

func TestController_LateResultIsDiscarded(t *testing.T) {
	svc := newFakeDocuments(5)
	svc.block["old"] = make(chan struct{})
	defer close(svc.block["old"])
	c := newDocController(svc, 0)
	defer c.Close()

	oldDone := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "old", 0)
		oldDone <- err
	}()

	// wait until the old search is in flight
	assert.Assert(t, waitFor(func() bool { return len(svc.Calls()) == 1 }))

	s, err := c.Search(context.Background(), "new", 0)
	assert.NilError(t, err)
	assert.Equal(t, s.Term, "new")

	err = <-oldDone
	assert.Assert(t, errors.Is(err, ErrSuperseded))
	assert.Equal(t, c.State().Term, "new")
}

func TestController_DebouncesInput(t *testing.T) {
	svc := newFakeDocuments(3)
	c := newDocController(svc, 30*time.Millisecond)
	defer c.Close()

	c.Input("i")
	c.Input("in")
	c.Input("inv")

	select {
	case s := <-c.Updates():
		assert.Equal(t, s.Term, "inv")
		assert.Equal(t, len(s.Items), 3)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after debounce")
	}
	assert.DeepEqual(t, svc.Calls(), []string{"inv@0"})
}

func TestController_ShowAmountFlag(t *testing.T) {
	svc := newFakeDocuments(3)
	show := false
	c := NewController(Params[model.Document]{
		Fetch: DocumentFetcher(svc, func() bool { return show }),
	})
	defer c.Close()

	s, err := c.Search(context.Background(), "", 0)
	assert.NilError(t, err)
	assert.Equal(t, s.Items[2].Amount, 0.0)

	show = true
	s, err = c.Search(context.Background(), "", 0)
	assert.NilError(t, err)
	assert.Equal(t, s.Items[2].Amount, 2.0)
}

type failingDocuments struct{ err error }

func (f failingDocuments) SearchDocuments(context.Context, string, int, int) (api.DocumentPage, error) {
	return api.DocumentPage{}, f.err
}

func TestController_ReportsErrors(t *testing.T) {
	bus := event.NewBus(nil)
	var toasts []string
	var auth int
	bus.Subscribe(event.Toast, func(e event.Event) { toasts = append(toasts, e.(event.ToastEvent).Text) })
	bus.Subscribe(event.AuthRequired, func(event.Event) { auth++ })

	for _, err := range []error{apperr.Backend("index unavailable"), apperr.FromResponse(401, nil)} {
		c := NewController(Params[model.Document]{
			Fetch:    DocumentFetcher(failingDocuments{err: err}, nil),
			Reporter: event.NewReporter(bus, "noaccess.html"),
		})
		_, got := c.Search(context.Background(), "x", 0)
		assert.Assert(t, got != nil)
		c.Close()
	}

	assert.DeepEqual(t, toasts, []string{"index unavailable"})
	assert.Equal(t, auth, 1)
}

type fakeNames struct{ items model.Listing }

func (f fakeNames) BookmarksByName(context.Context, string) (model.Listing, error) {
	return f.items, nil
}

func TestBookmarkFetcher(t *testing.T) {
	c := NewController(Params[model.Bookmark]{
		Fetch: BookmarkFetcher(fakeNames{items: listing("React Router Documentation", "Router")}),
	})
	defer c.Close()

	s, err := c.Search(context.Background(), "router", 0)
	assert.NilError(t, err)
	assert.Equal(t, s.Items[0].DisplayName, "Router")
	assert.Assert(t, !s.HasMore())
}

func TestController_CloseStopsUpdates(t *testing.T) {
	c := newDocController(newFakeDocuments(1), time.Hour)
	c.Input("never")
	c.Close()
	c.Input("ignored")

	_, open := <-c.Updates()
	assert.Assert(t, !open)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestController_ReturnToCancelledTerm(t *testing.T) {
	gate := make(chan struct{})
	var mu sync.Mutex
	var calls []string
	fetch := func(ctx context.Context, term string, limit, skip int) (Page[model.Document], error) {
		mu.Lock()
		calls = append(calls, term)
		mu.Unlock()
		if term == "a" {
			// slow to notice cancellation
			<-gate
			if err := ctx.Err(); err != nil {
				return Page[model.Document]{}, err
			}
		}
		return Page[model.Document]{Items: []model.Document{{ID: term + "1"}}, TotalEntries: 1}, nil
	}
	callCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(calls)
	}

	c := NewController(Params[model.Document]{Fetch: fetch})
	defer c.Close()
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := c.Search(ctx, "a", 0)
		first <- err
	}()
	assert.Assert(t, waitFor(func() bool { return callCount() == 1 }))

	_, err := c.Search(ctx, "b", 0)
	assert.NilError(t, err)

	type result struct {
		state State[model.Document]
		err   error
	}
	latest := make(chan result, 1)
	go func() {
		s, err := c.Search(ctx, "a", 0)
		latest <- result{s, err}
	}()
	assert.Assert(t, waitFor(func() bool { return callCount() == 3 }), "search for a did not start a new fetch")
	close(gate)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	res := <-latest
	assert.NilError(t, res.err)
	assert.Equal(t, res.state.Term, "a")
	assert.DeepEqual(t, res.state.Items, []model.Document{{ID: "a1"}})
}
