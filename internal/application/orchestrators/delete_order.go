package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain/action"
)

// OrderRemover defines the order store interface needed to delete an
// order.
type OrderRemover interface {
	Delete(ctx context.Context, id string) error
}

// DeleteOrderDeps holds dependencies for DeleteOrder.
type DeleteOrderDeps struct {
	OrderStore OrderRemover
	Queue      ActionEnqueuer
	Network    ConnectivitySource
}

// ExecuteDeleteOrder removes an order locally and, when offline, queues
// a DELETE_ORDER action so the removal replays on reconnect. Deleting
// an order that is already gone is a no-op.
// PRE: orderID is non-empty
// POST: No local order with the given ID remains
func ExecuteDeleteOrder(ctx context.Context, orderID string, deps DeleteOrderDeps) error {
	if orderID == "" {
		return errors.New("order id is required")
	}

	if !deps.Network.Online() {
		slog.Info("order_event", "event", "delete_deferred", "order_id", orderID)
		if err := enqueue(ctx, deps.Queue, action.DeleteOrderPayload{OrderID: orderID}); err != nil {
			return err
		}
	}

	if err := deps.OrderStore.Delete(ctx, orderID); err != nil {
		return err
	}

	slog.Info("order_event", "event", "order_deleted", "order_id", orderID)
	return nil
}
