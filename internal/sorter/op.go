package sorter

import (
	"context"
	"sync"

	"github.com/nikbrunner/bmr/internal/model"
)

// State is the lifecycle stage of a move.
type State int

const (
	// Pending: the list shows the new order, the backend has not answered.
	Pending State = iota
	// Committed: the backend accepted the new order.
	Committed
	// RolledBack: the backend refused or failed and the snapshot was restored.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Op is one move being synchronized.
type Op struct {
	snapshot model.Listing
	batch    model.SortOrderBatch
	done     chan struct{}

	mu    sync.Mutex
	state State
	err   error
}

func newOp(snapshot model.Listing, batch model.SortOrderBatch) *Op {
	return &Op{
		snapshot: snapshot.Clone(),
		batch:    batch,
		done:     make(chan struct{}),
	}
}

func (o *Op) finish(state State, err error) {
	o.mu.Lock()
	o.state = state
	o.err = err
	o.mu.Unlock()
	close(o.done)
}

// State returns the current stage.
func (o *Op) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Snapshot returns the listing as it was before the move.
func (o *Op) Snapshot() model.Listing {
	return o.snapshot.Clone()
}

// Batch returns the renumbering submitted to the backend.
func (o *Op) Batch() model.SortOrderBatch {
	return o.batch
}

// Done is closed once the backend answered.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the move is committed or rolled back and returns the
// reason of a rollback.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}
