package collection

import (
	"context"
	"log/slog"
	"sync"

	"encore/internal/broadcast"
	"encore/internal/domain/entity"
	"encore/internal/domain/repository"

	"github.com/google/uuid"
)

// Manager keys collection views by user and drives the broadcast
// trigger: whenever the mutation counter is raised it refetches every
// live view. Views are created lazily on first access and torn down on
// session end (logout, account deletion).
type Manager struct {
	mu    sync.Mutex
	views map[uuid.UUID]*View

	txManager repository.TransactionManager
	sub       *broadcast.Subscription
	logger    *slog.Logger

	baseCtx context.Context
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewManager creates a Manager subscribed to b. baseCtx bounds the
// background refetches triggered by broadcasts.
func NewManager(
	baseCtx context.Context,
	b *broadcast.Broadcaster,
	txManager repository.TransactionManager,
	logger *slog.Logger,
) *Manager {
	m := &Manager{
		views:     make(map[uuid.UUID]*View),
		txManager: txManager,
		sub:       b.Subscribe(),
		logger:    logger,
		baseCtx:   baseCtx,
		done:      make(chan struct{}),
	}

	m.wg.Add(1)
	go m.consume()

	return m
}

// Acquire returns the view for ownerID, creating an idle one on first
// access.
func (m *Manager) Acquire(ownerID uuid.UUID) *View {
	m.mu.Lock()
	defer m.mu.Unlock()

	view, ok := m.views[ownerID]
	if !ok {
		view = NewView(ownerID, m.fetcherFor(ownerID))
		m.views[ownerID] = view
	}

	return view
}

// Drop tears down the view for ownerID. The next Acquire starts fresh.
func (m *Manager) Drop(ownerID uuid.UUID) {
	m.mu.Lock()
	delete(m.views, ownerID)
	m.mu.Unlock()
}

// Close stops the broadcast consumer. Live views stay readable but no
// longer react to mutations.
func (m *Manager) Close() {
	close(m.done)
	m.sub.Close()
	m.wg.Wait()
}

func (m *Manager) fetcherFor(ownerID uuid.UUID) Fetcher {
	return func(ctx context.Context) ([]*entity.Order, error) {
		var orders []*entity.Order
		err := m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
			found, err := factory.OrderRepo().FindByOwner(ctx, ownerID)
			if err != nil {
				return err
			}
			orders = found

			return nil
		})
		if err != nil {
			return nil, err
		}

		return orders, nil
	}
}

func (m *Manager) consume() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case seq, ok := <-m.sub.C():
			if !ok {
				return
			}
			m.refreshAll(seq)
		}
	}
}

// refreshAll refetches every live view. Invalidation is deliberately
// coarse: the broadcast carries no payload, so all views converge to
// the latest store state.
func (m *Manager) refreshAll(seq uint64) {
	m.mu.Lock()
	views := make([]*View, 0, len(m.views))
	for _, view := range m.views {
		views = append(views, view)
	}
	m.mu.Unlock()

	for _, view := range views {
		snapshot := view.Refresh(m.baseCtx)
		if snapshot.Err != nil {
			m.logger.Warn("collection refetch failed",
				slog.String("owner_id", view.OwnerID().String()),
				slog.Uint64("broadcast_seq", seq),
				slog.Any("error", snapshot.Err),
			)
		}
	}
}
