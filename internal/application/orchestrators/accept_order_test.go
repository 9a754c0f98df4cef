package orchestrators

import (
	"context"
	"errors"
	"testing"

	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

func storedOrder(store *fakeOrderStore, id, status string, coords *order.Coordinates) {
	o := order.Order{ID: id, Customer: "Alice", Address: "12 Queen St", Items: []string{"Pizza"}, Status: status}
	if coords != nil {
		o.SetCoordinates(*coords)
	}
	store.orders[id] = o
}

// TestExecuteAcceptOrder_Online tests the optimistic local transition
// with no deferred action.
func TestExecuteAcceptOrder_Online(t *testing.T) {
	store := newFakeOrderStore()
	storedOrder(store, "1", order.StatusPending, &order.Coordinates{Lat: 3, Lng: 4})
	queue := newFakeQueue()
	obs := &fakeObserver{}

	err := ExecuteAcceptOrder(context.Background(), "1", AcceptOrderDeps{
		OrderStore: store, Queue: queue, Network: newFakeNetwork(true), Observer: obs,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.get("1")
	if got.Status != order.StatusAccepted {
		t.Errorf("status = %s", got.Status)
	}
	if len(queue.pending()) != 0 {
		t.Error("online accept must not queue an action")
	}
	if len(obs.accepted) != 1 || obs.accepted[0].Lat != 3 {
		t.Errorf("observer = %+v", obs.accepted)
	}
}

// TestExecuteAcceptOrder_Offline tests that the replay action is
// queued before the local update.
func TestExecuteAcceptOrder_Offline(t *testing.T) {
	store := newFakeOrderStore()
	storedOrder(store, "1", order.StatusPending, nil)
	queue := newFakeQueue()

	err := ExecuteAcceptOrder(context.Background(), "1", AcceptOrderDeps{
		OrderStore: store, Queue: queue, Network: newFakeNetwork(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := queue.pending()
	if len(pending) != 1 || pending[0].Type != action.TypeUpdateOrder {
		t.Fatalf("queued = %+v", pending)
	}
	p, _ := pending[0].Decode()
	up := p.(action.UpdateOrderPayload)
	if up.OrderID != "1" || up.Status != order.StatusAccepted {
		t.Errorf("payload = %+v", up)
	}

	got, _ := store.get("1")
	if got.Status != order.StatusAccepted {
		t.Errorf("local status = %s", got.Status)
	}
}

// TestExecuteAcceptOrder_NoCoordinates tests the zero-coordinate
// fallback handed to the observer.
func TestExecuteAcceptOrder_NoCoordinates(t *testing.T) {
	store := newFakeOrderStore()
	storedOrder(store, "1", order.StatusPending, nil)
	obs := &fakeObserver{}

	err := ExecuteAcceptOrder(context.Background(), "1", AcceptOrderDeps{
		OrderStore: store, Queue: newFakeQueue(), Network: newFakeNetwork(true), Observer: obs,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs.accepted) != 1 {
		t.Fatalf("observer calls = %d", len(obs.accepted))
	}
	loc := obs.accepted[0]
	if loc.Lat != 0 || loc.Lng != 0 {
		t.Errorf("fallback location = (%v, %v), want (0, 0)", loc.Lat, loc.Lng)
	}
	if loc.ID != "1" || loc.Address == "" {
		t.Error("fallback location must still carry id and address")
	}
}

// TestExecuteAcceptOrder_Preconditions tests the failure paths.
func TestExecuteAcceptOrder_Preconditions(t *testing.T) {
	t.Run("missing order", func(t *testing.T) {
		err := ExecuteAcceptOrder(context.Background(), "ghost", AcceptOrderDeps{
			OrderStore: newFakeOrderStore(), Queue: newFakeQueue(), Network: newFakeNetwork(true),
		})
		if !errors.Is(err, order.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusRejected, nil)
		queue := newFakeQueue()
		err := ExecuteAcceptOrder(context.Background(), "1", AcceptOrderDeps{
			OrderStore: store, Queue: queue, Network: newFakeNetwork(false),
		})
		if !errors.Is(err, order.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
		if len(queue.pending()) != 0 {
			t.Error("failed transition must not queue an action")
		}
	})

	t.Run("empty id", func(t *testing.T) {
		err := ExecuteAcceptOrder(context.Background(), "", AcceptOrderDeps{
			OrderStore: newFakeOrderStore(), Queue: newFakeQueue(), Network: newFakeNetwork(true),
		})
		if err == nil {
			t.Error("expected error for empty id")
		}
	})
}

// TestExecuteRejectOrder tests the reject flow online and offline.
func TestExecuteRejectOrder(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusPending, nil)
		obs := &fakeObserver{}
		err := ExecuteRejectOrder(context.Background(), "1", RejectOrderDeps{
			OrderStore: store, Queue: newFakeQueue(), Network: newFakeNetwork(true), Observer: obs,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := store.get("1")
		if got.Status != order.StatusRejected {
			t.Errorf("status = %s", got.Status)
		}
		if len(obs.rejected) != 1 || obs.rejected[0] != "1" {
			t.Errorf("observer = %+v", obs.rejected)
		}
	})

	t.Run("offline queues update", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusPending, nil)
		queue := newFakeQueue()
		err := ExecuteRejectOrder(context.Background(), "1", RejectOrderDeps{
			OrderStore: store, Queue: queue, Network: newFakeNetwork(false),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pending := queue.pending()
		if len(pending) != 1 {
			t.Fatalf("queued = %d", len(pending))
		}
		p, _ := pending[0].Decode()
		if p.(action.UpdateOrderPayload).Status != order.StatusRejected {
			t.Errorf("payload = %+v", p)
		}
	})

	t.Run("accepted order cannot be rejected", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusAccepted, nil)
		err := ExecuteRejectOrder(context.Background(), "1", RejectOrderDeps{
			OrderStore: store, Queue: newFakeQueue(), Network: newFakeNetwork(true),
		})
		if !errors.Is(err, order.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

// TestExecuteCompleteOrder tests the accepted-to-completed transition.
func TestExecuteCompleteOrder(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusAccepted, nil)
		err := ExecuteCompleteOrder(context.Background(), "1", CompleteOrderDeps{
			OrderStore: store, Queue: newFakeQueue(), Network: newFakeNetwork(true),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := store.get("1")
		if got.Status != order.StatusCompleted {
			t.Errorf("status = %s", got.Status)
		}
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusPending, nil)
		err := ExecuteCompleteOrder(context.Background(), "1", CompleteOrderDeps{
			OrderStore: store, Queue: newFakeQueue(), Network: newFakeNetwork(true),
		})
		if !errors.Is(err, order.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("offline queues update", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusAccepted, nil)
		queue := newFakeQueue()
		err := ExecuteCompleteOrder(context.Background(), "1", CompleteOrderDeps{
			OrderStore: store, Queue: queue, Network: newFakeNetwork(false),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(queue.pending()) != 1 {
			t.Errorf("queued = %d", len(queue.pending()))
		}
	})
}

// TestExecuteDeleteOrder tests local removal plus the deferred replay.
func TestExecuteDeleteOrder(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusPending, nil)
		queue := newFakeQueue()
		err := ExecuteDeleteOrder(context.Background(), "1", DeleteOrderDeps{
			OrderStore: store, Queue: queue, Network: newFakeNetwork(true),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.get("1"); ok {
			t.Error("order should be gone")
		}
		if len(queue.pending()) != 0 {
			t.Error("online delete must not queue an action")
		}
	})

	t.Run("offline queues delete", func(t *testing.T) {
		store := newFakeOrderStore()
		storedOrder(store, "1", order.StatusPending, nil)
		queue := newFakeQueue()
		err := ExecuteDeleteOrder(context.Background(), "1", DeleteOrderDeps{
			OrderStore: store, Queue: queue, Network: newFakeNetwork(false),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pending := queue.pending()
		if len(pending) != 1 || pending[0].Type != action.TypeDeleteOrder {
			t.Fatalf("queued = %+v", pending)
		}
		if _, ok := store.get("1"); ok {
			t.Error("local delete must still happen offline")
		}
	})
}
