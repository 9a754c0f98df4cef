package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

// OrderMutator defines the order store interface needed to read and
// partially update an existing order.
type OrderMutator interface {
	Get(ctx context.Context, id string) (order.Order, error)
	Update(ctx context.Context, id string, patch order.Patch) error
}

// SelectionObserver is notified when the courier accepts or rejects an
// order. The map/UI collaborator behind it lives outside this core.
type SelectionObserver interface {
	OrderAccepted(loc order.Location)
	OrderRejected(orderID string)
}

// AcceptOrderDeps holds dependencies for AcceptOrder.
type AcceptOrderDeps struct {
	OrderStore OrderMutator
	Queue      ActionEnqueuer
	Network    ConnectivitySource
	Observer   SelectionObserver // optional: nil skips notification
}

// ExecuteAcceptOrder moves a pending order to accepted. The local write
// is optimistic; offline, an UPDATE_ORDER action is queued first so the
// remote effect replays on reconnect. The selection observer receives
// the order's location, falling back to zero coordinates (logged as a
// data-quality warning) when the order has not been geocoded yet.
// PRE: orderID names a pending order
// POST: Local status is accepted; offline, the replay action is queued
func ExecuteAcceptOrder(ctx context.Context, orderID string, deps AcceptOrderDeps) error {
	if orderID == "" {
		return errors.New("order id is required")
	}

	o, err := deps.OrderStore.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.Accept(); err != nil {
		return err
	}

	if !deps.Network.Online() {
		slog.Info("order_event", "event", "accept_deferred", "order_id", orderID)
		if err := enqueue(ctx, deps.Queue, action.UpdateOrderPayload{OrderID: orderID, Status: order.StatusAccepted}); err != nil {
			return err
		}
	}

	if err := deps.OrderStore.Update(ctx, orderID, order.StatusPatch(order.StatusAccepted)); err != nil {
		return err
	}

	loc, geocoded := o.Location()
	if !geocoded {
		slog.Warn("order_event", "event", "accepted_without_coordinates", "order_id", orderID, "address", o.Address)
	}
	if deps.Observer != nil {
		deps.Observer.OrderAccepted(loc)
	}

	slog.Info("order_event", "event", "order_accepted", "order_id", orderID)
	return nil
}
