package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

// CompleteOrderDeps holds dependencies for CompleteOrder.
type CompleteOrderDeps struct {
	OrderStore OrderMutator
	Queue      ActionEnqueuer
	Network    ConnectivitySource
}

// ExecuteCompleteOrder moves an accepted order to the terminal
// completed status.
// PRE: orderID names an accepted order
// POST: Local status is completed; offline, the replay action is queued
func ExecuteCompleteOrder(ctx context.Context, orderID string, deps CompleteOrderDeps) error {
	if orderID == "" {
		return errors.New("order id is required")
	}

	o, err := deps.OrderStore.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.Complete(); err != nil {
		return err
	}

	if !deps.Network.Online() {
		slog.Info("order_event", "event", "complete_deferred", "order_id", orderID)
		if err := enqueue(ctx, deps.Queue, action.UpdateOrderPayload{OrderID: orderID, Status: order.StatusCompleted}); err != nil {
			return err
		}
	}

	if err := deps.OrderStore.Update(ctx, orderID, order.StatusPatch(order.StatusCompleted)); err != nil {
		return err
	}

	slog.Info("order_event", "event", "order_completed", "order_id", orderID)
	return nil
}
