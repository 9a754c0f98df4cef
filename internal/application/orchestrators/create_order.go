package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"courier/internal/adapters/geocode"
	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

// OrderWriter defines the order store interface needed to persist a
// new order.
type OrderWriter interface {
	Save(ctx context.Context, o order.Order) error
}

// ActionEnqueuer defines the queue interface needed to defer a
// mutation for later replay.
type ActionEnqueuer interface {
	Enqueue(ctx context.Context, a action.Action) (action.Action, error)
}

// ConnectivitySource exposes the current online/offline status.
type ConnectivitySource interface {
	Online() bool
}

// CreateOrderInput carries input for the create-order orchestrator.
type CreateOrderInput struct {
	Customer string
	Address  string
	Items    []string
}

// CreateOrderDeps holds dependencies for CreateOrder.
type CreateOrderDeps struct {
	OrderStore OrderWriter
	Queue      ActionEnqueuer
	Geocoder   geocode.Geocoder
	Network    ConnectivitySource
}

// ExecuteCreateOrder creates a new pending order. Online, the address
// is geocoded inline; a failed inline geocode defers resolution via a
// queued GEOCODE_ORDER action. Offline, the whole creation is deferred:
// the order is still written locally (optimistic), and CREATE_ORDER
// plus GEOCODE_ORDER actions are queued for the next sync pass.
// PRE: Customer, Address and Items pass order validation
// POST: Order is durably stored locally before this returns
func ExecuteCreateOrder(ctx context.Context, input CreateOrderInput, deps CreateOrderDeps) (order.Order, error) {
	o := order.Order{
		ID:       order.NewID(),
		Customer: strings.TrimSpace(input.Customer),
		Address:  strings.TrimSpace(input.Address),
		Items:    input.Items,
		Status:   order.StatusPending,
	}
	if err := o.Validate(); err != nil {
		return order.Order{}, err
	}

	online := deps.Network.Online()
	geocoded := false
	if online {
		if coords, err := deps.Geocoder.Resolve(ctx, o.Address); err == nil {
			o.SetCoordinates(coords)
			geocoded = true
		}
	}

	if err := deps.OrderStore.Save(ctx, o); err != nil {
		return order.Order{}, err
	}

	if !online {
		if err := enqueue(ctx, deps.Queue, action.CreateOrderPayload{Order: o}); err != nil {
			return order.Order{}, err
		}
		if err := enqueue(ctx, deps.Queue, action.GeocodeOrderPayload{OrderID: o.ID, Address: o.Address}); err != nil {
			return order.Order{}, err
		}
	} else if !geocoded {
		if err := enqueue(ctx, deps.Queue, action.GeocodeOrderPayload{OrderID: o.ID, Address: o.Address}); err != nil {
			return order.Order{}, err
		}
	}

	slog.Info("order_event", "event", "order_created", "order_id", o.ID, "online", online, "geocoded", geocoded)
	return o, nil
}

// enqueue wraps a payload into an action and appends it to the queue.
func enqueue(ctx context.Context, q ActionEnqueuer, p action.Payload) error {
	a, err := action.New(p)
	if err != nil {
		return err
	}
	if _, err := q.Enqueue(ctx, a); err != nil {
		return fmt.Errorf("enqueue %s: %w", p.Kind(), err)
	}
	return nil
}
