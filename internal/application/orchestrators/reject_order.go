package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

// RejectOrderDeps holds dependencies for RejectOrder.
type RejectOrderDeps struct {
	OrderStore OrderMutator
	Queue      ActionEnqueuer
	Network    ConnectivitySource
	Observer   SelectionObserver // optional: nil skips notification
}

// ExecuteRejectOrder moves a pending order to the terminal rejected
// status, optimistically locally and via a queued UPDATE_ORDER action
// when offline.
// PRE: orderID names a pending order
// POST: Local status is rejected; offline, the replay action is queued
func ExecuteRejectOrder(ctx context.Context, orderID string, deps RejectOrderDeps) error {
	if orderID == "" {
		return errors.New("order id is required")
	}

	o, err := deps.OrderStore.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.Reject(); err != nil {
		return err
	}

	if !deps.Network.Online() {
		slog.Info("order_event", "event", "reject_deferred", "order_id", orderID)
		if err := enqueue(ctx, deps.Queue, action.UpdateOrderPayload{OrderID: orderID, Status: order.StatusRejected}); err != nil {
			return err
		}
	}

	if err := deps.OrderStore.Update(ctx, orderID, order.StatusPatch(order.StatusRejected)); err != nil {
		return err
	}

	if deps.Observer != nil {
		deps.Observer.OrderRejected(orderID)
	}

	slog.Info("order_event", "event", "order_rejected", "order_id", orderID)
	return nil
}
