// Package collection owns the per-user order collection view: the
// server-side mirror of a client's fetched order list. A view refetches
// on explicit triggers (session start, foreground-visibility regain,
// mutation broadcast) and otherwise serves its cached snapshot.
package collection

import (
	"context"
	"sync"

	"encore/internal/domain/entity"

	"github.com/google/uuid"
)

// State is the view's fetch state machine position.
type State string

const (
	// StateIdle means no fetch has run yet.
	StateIdle State = "idle"
	// StateLoading means a fetch is in flight.
	StateLoading State = "loading"
	// StateLoaded means the last completed fetch succeeded.
	StateLoaded State = "loaded"
	// StateFailed means the last completed fetch failed.
	StateFailed State = "failed"
)

// Fetcher loads the authoritative order list for one owner.
type Fetcher func(ctx context.Context) ([]*entity.Order, error)

// Snapshot is a point-in-time copy of a view's state.
type Snapshot struct {
	State  State
	Orders []*entity.Order
	Err    error
}

// View holds the fetched order collection for a single user session.
//
// Fetches run in the caller's goroutine with the view unlocked, so
// concurrent triggers may overlap; whichever fetch completes last wins.
// That is safe because refetches are idempotent reads of the same
// owner-scoped list.
type View struct {
	mu      sync.Mutex
	ownerID uuid.UUID
	fetch   Fetcher

	state  State
	orders []*entity.Order
	err    error
}

// NewView creates an idle view for ownerID.
func NewView(ownerID uuid.UUID, fetch Fetcher) *View {
	return &View{
		ownerID: ownerID,
		fetch:   fetch,
		state:   StateIdle,
	}
}

// OwnerID returns the user the view belongs to.
func (v *View) OwnerID() uuid.UUID {
	return v.ownerID
}

// Refresh transitions the view to Loading, runs one fetch, applies the
// result, and returns the resulting snapshot. On failure the previous
// order list is kept untouched; only the state and error change.
func (v *View) Refresh(ctx context.Context) Snapshot {
	v.mu.Lock()
	v.state = StateLoading
	v.mu.Unlock()

	orders, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = StateFailed
		v.err = err
	} else {
		v.state = StateLoaded
		v.orders = orders
		v.err = nil
	}

	return v.snapshotLocked()
}

// Snapshot returns the current state without triggering a fetch.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	orders := make([]*entity.Order, len(v.orders))
	copy(orders, v.orders)

	return Snapshot{
		State:  v.state,
		Orders: orders,
		Err:    v.err,
	}
}
