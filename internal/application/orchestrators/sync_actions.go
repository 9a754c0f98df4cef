package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"courier/internal/adapters/geocode"
	"courier/internal/adapters/network"
	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

const defaultPassTimeout = 5 * time.Minute

// ActionQueue defines the queue interface the sync engine drains.
type ActionQueue interface {
	ListPending(ctx context.Context) ([]action.Action, error)
	Acknowledge(ctx context.Context, id int64) error
}

// SyncOrderStore defines the order store interface replayed actions
// are applied against.
type SyncOrderStore interface {
	Save(ctx context.Context, o order.Order) error
	Update(ctx context.Context, id string, patch order.Patch) error
	Delete(ctx context.Context, id string) error
}

// ConnectivityFeed exposes the current status plus transition events.
type ConnectivityFeed interface {
	Online() bool
	Subscribe() (<-chan network.Event, func())
}

// SyncEngineDeps holds dependencies for the sync engine.
type SyncEngineDeps struct {
	Queue      ActionQueue
	OrderStore SyncOrderStore
	Geocoder   geocode.Geocoder
	Network    ConnectivityFeed
}

// SyncEngine converts offline-accumulated intent into authoritative
// effects when connectivity returns. One pass drains the queue in FIFO
// order, applies each action, and acknowledges it only after its effect
// is durable. A crash between apply and acknowledge re-applies an
// already-applied effect on the next pass; every apply step is
// idempotent, so that is safe.
type SyncEngine struct {
	deps        SyncEngineDeps
	passTimeout time.Duration

	syncing atomic.Bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSyncEngine creates a sync engine.
func NewSyncEngine(deps SyncEngineDeps) *SyncEngine {
	return &SyncEngine{
		deps:        deps,
		passTimeout: defaultPassTimeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Syncing reports whether a pass is currently in flight. This is the
// aggregate flag the UI observes.
func (e *SyncEngine) Syncing() bool {
	return e.syncing.Load()
}

// Start subscribes to connectivity transitions and runs a pass on every
// went-online event. If the process starts already online, one pass
// runs immediately — that covers actions queued while the app was last
// closed offline and reopened online.
// POST: A background loop runs until Stop is called
func (e *SyncEngine) Start() {
	events, cancel := e.deps.Network.Subscribe()

	go func() {
		defer close(e.doneCh)
		defer cancel()

		if e.deps.Network.Online() {
			e.runPass()
		}

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Online {
					e.runPass()
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop halts the background loop and waits for it to exit. An in-flight
// pass is not cancelled; unacknowledged actions simply stay queued for
// the next session, which is the intended crash-recovery behavior.
func (e *SyncEngine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	<-e.doneCh
	slog.Info("sync_event", "event", "engine_stopped")
}

func (e *SyncEngine) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), e.passTimeout)
	defer cancel()
	e.SyncPending(ctx)
}

// SyncPending runs one drain-and-apply pass. Re-entrant triggers while
// a pass is active are absorbed: the guard flag flips atomically and is
// released in a defer, so a mid-pass panic cannot wedge future syncs.
// Actions enqueued while the pass runs are picked up by the next pass,
// never inserted mid-pass.
// POST: Every action whose effect was durably applied is acknowledged;
// failed actions remain queued, in order, for the next pass
func (e *SyncEngine) SyncPending(ctx context.Context) {
	if !e.syncing.CompareAndSwap(false, true) {
		slog.Debug("sync_event", "event", "pass_already_running")
		return
	}
	defer e.syncing.Store(false)

	passID := uuid.NewString()

	actions, err := e.deps.Queue.ListPending(ctx)
	if err != nil {
		// Best-effort read: a storage hiccup must not block the rest of
		// the app. The queue is untouched and retried on the next pass.
		slog.Warn("sync_event", "event", "list_pending_failed", "pass_id", passID, "error", err.Error())
		return
	}
	if len(actions) == 0 {
		return
	}

	slog.Info("sync_event", "event", "pass_started", "pass_id", passID, "actions", len(actions))

	applied, failed := 0, 0
	for _, a := range actions {
		if err := e.apply(ctx, a); err != nil {
			// One failing action never blocks the rest of the batch.
			failed++
			slog.Error("sync_event", "event", "action_apply_failed",
				"pass_id", passID, "action_id", a.ID, "type", a.Type, "error", err.Error())
			continue
		}
		if err := e.deps.Queue.Acknowledge(ctx, a.ID); err != nil {
			// The effect is already durable; a lost acknowledgement only
			// means one extra idempotent replay next pass.
			failed++
			slog.Error("sync_event", "event", "acknowledge_failed",
				"pass_id", passID, "action_id", a.ID, "error", err.Error())
			continue
		}
		applied++
	}

	slog.Info("sync_event", "event", "pass_finished", "pass_id", passID, "applied", applied, "failed", failed)
}

// apply dispatches one action to its effect. Returning nil means the
// effect is durably applied and the action may be acknowledged.
func (e *SyncEngine) apply(ctx context.Context, a action.Action) error {
	p, err := a.Decode()
	if err != nil {
		// A corrupt or foreign record can never succeed. Dropping it
		// (nil return acknowledges) beats retrying it forever.
		slog.Warn("sync_event", "event", "action_dropped", "action_id", a.ID, "type", a.Type, "error", err.Error())
		return nil
	}

	switch p := p.(type) {
	case action.CreateOrderPayload:
		// Upsert semantics make replay of an already-created order a
		// visible no-op rather than a duplicate.
		return e.deps.OrderStore.Save(ctx, p.Order)
	case action.UpdateOrderPayload:
		// Last write wins; re-setting the same status is harmless.
		return e.deps.OrderStore.Update(ctx, p.OrderID, order.StatusPatch(p.Status))
	case action.DeleteOrderPayload:
		return e.deps.OrderStore.Delete(ctx, p.OrderID)
	case action.GeocodeOrderPayload:
		coords, err := e.deps.Geocoder.Resolve(ctx, p.Address)
		if err != nil {
			// Unresolved: leave the action queued so geocoding is
			// retried on the next reconnect.
			return err
		}
		return e.deps.OrderStore.Update(ctx, p.OrderID, order.CoordsPatch(coords))
	}
	return nil
}
