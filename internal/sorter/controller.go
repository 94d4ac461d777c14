package sorter

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
)

// ErrSyncPending is returned by Move while the previous move is still being
// synchronized.
var ErrSyncPending = errors.New("sort order update still pending")

// ErrDetached is returned by Move after the controller was detached.
var ErrDetached = errors.New("sort controller detached")

const rejectedMessage = "could not update the bookmarks sort-order!"

// Syncer submits a complete renumbering of a folder.
type Syncer interface {
	UpdateSortOrder(ctx context.Context, batch model.SortOrderBatch) (api.Result, error)
}

// Params configures a Controller.
type Params struct {
	Path     string
	Items    model.Listing
	Syncer   Syncer
	Reporter *event.Reporter
	Logger   *zap.Logger
}

// Controller owns the listing of one folder and applies moves to it.
// Only one move may be synchronizing at a time.
type Controller struct {
	path     string
	syncer   Syncer
	reporter *event.Reporter
	logger   *zap.Logger

	mu       sync.Mutex
	items    model.Listing
	version  uint64
	pending  *Op
	detached bool
}

// NewController creates a Controller for the given listing.
func NewController(params Params) *Controller {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		path:     params.Path,
		syncer:   params.Syncer,
		reporter: params.Reporter,
		logger:   logger,
		items:    params.Items.Clone(),
	}
}

// Items returns a copy of the displayed listing.
func (c *Controller) Items() model.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Clone()
}

// Replace swaps in a freshly loaded listing. A move still synchronizing no
// longer touches the list once it completes.
func (c *Controller) Replace(items model.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items.Clone()
	c.version++
}

// Pending reports whether a move is waiting for the backend.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Move relocates the item at from to position to and starts synchronizing
// the new order. The list is updated before the backend answers; the
// returned Op completes once it has. Moving an item onto itself returns a
// nil Op.
func (c *Controller) Move(ctx context.Context, from, to int) (*Op, error) {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil, ErrDetached
	}
	if c.pending != nil {
		c.mu.Unlock()
		return nil, ErrSyncPending
	}
	items, batch, err := Reorder(c.items, from, to)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if from == to {
		c.mu.Unlock()
		return nil, nil
	}

	op := newOp(c.items, batch)
	c.items = items
	c.pending = op
	version := c.version
	c.mu.Unlock()

	c.logger.Debug("sort order changed",
		zap.String("path", c.path),
		zap.Int("from", from),
		zap.Int("to", to))

	go c.sync(context.WithoutCancel(ctx), op, version)
	return op, nil
}

func (c *Controller) sync(ctx context.Context, op *Op, version uint64) {
	res, err := c.syncer.UpdateSortOrder(ctx, op.batch)
	if err == nil && !res.Success {
		msg := res.Message
		if msg == "" {
			msg = rejectedMessage
		}
		err = apperr.SyncConflict(msg)
	}

	c.mu.Lock()
	c.pending = nil
	detached := c.detached
	current := version == c.version
	switch {
	case detached || !current:
	case err != nil:
		c.items = op.snapshot.Clone()
	default:
		for i := range c.items {
			c.items[i].SortOrder = op.batch.SortOrder[i]
		}
	}
	ids := c.items.IDs()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("sort order rejected, restored previous order",
			zap.String("path", c.path), zap.Error(err))
	}
	if !detached && current {
		if err != nil {
			c.reporter.Fail(err)
		}
		c.reporter.Bus().Publish(event.ListChangedEvent{Path: c.path, IDs: ids})
	}

	if err != nil {
		op.finish(RolledBack, err)
		return
	}
	op.finish(Committed, nil)
}

// Detach drops the view's interest in pending moves. A running write is not
// cancelled, but its outcome no longer changes the list or reaches the bus.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}
