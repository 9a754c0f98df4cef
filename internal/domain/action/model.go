package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courier/internal/domain/order"
)

// Action type constants. One constant per deferred mutation kind.
const (
	TypeCreateOrder  = "CREATE_ORDER"
	TypeUpdateOrder  = "UPDATE_ORDER"
	TypeDeleteOrder  = "DELETE_ORDER"
	TypeGeocodeOrder = "GEOCODE_ORDER"
)

// Domain errors.
var (
	ErrUnknownType  = errors.New("unknown action type")
	ErrEmptyPayload = errors.New("action payload is required")
)

// Action is a durable record of a mutation requested while offline (or
// whose remote effect failed), awaiting replay. The ID is assigned by
// the queue store on enqueue and is the acknowledgement key.
type Action struct {
	ID        int64
	Type      string
	Payload   []byte // JSON-encoded payload matching Type
	Timestamp time.Time
}

// Payload is the closed set of action payloads. Each variant carries
// only the fields its apply step needs.
type Payload interface {
	Kind() string
}

// CreateOrderPayload replays a full order created while offline.
// Applying it is an upsert, so replay after a crash is idempotent.
type CreateOrderPayload struct {
	Order order.Order `json:"order"`
}

// UpdateOrderPayload re-applies a status change. Replay is a last-write-
// wins re-set of the same status.
type UpdateOrderPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// DeleteOrderPayload replays an order removal.
type DeleteOrderPayload struct {
	OrderID string `json:"orderId"`
}

// GeocodeOrderPayload defers address resolution until connectivity
// returns. It stays queued until the gateway resolves the address.
type GeocodeOrderPayload struct {
	OrderID string `json:"orderId"`
	Address string `json:"address"`
}

func (CreateOrderPayload) Kind() string  { return TypeCreateOrder }
func (UpdateOrderPayload) Kind() string  { return TypeUpdateOrder }
func (DeleteOrderPayload) Kind() string  { return TypeDeleteOrder }
func (GeocodeOrderPayload) Kind() string { return TypeGeocodeOrder }

// New builds an Action from a typed payload. The queue store assigns
// ID and Timestamp on enqueue.
// PRE: p is one of the payload variants in this package
// POST: Returns an Action whose Type matches the payload kind
func New(p Payload) (Action, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Action{}, fmt.Errorf("marshal %s payload: %w", p.Kind(), err)
	}
	return Action{Type: p.Kind(), Payload: data}, nil
}

// Decode unmarshals the payload into its typed variant. The switch is
// exhaustive over the closed set of action types; anything else is
// rejected before reaching an apply step.
// PRE: Action has a non-empty payload
// POST: Returns the typed payload or ErrUnknownType
func (a Action) Decode() (Payload, error) {
	if len(a.Payload) == 0 {
		return nil, ErrEmptyPayload
	}
	switch a.Type {
	case TypeCreateOrder:
		var p CreateOrderPayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", a.Type, err)
		}
		return p, nil
	case TypeUpdateOrder:
		var p UpdateOrderPayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", a.Type, err)
		}
		return p, nil
	case TypeDeleteOrder:
		var p DeleteOrderPayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", a.Type, err)
		}
		return p, nil
	case TypeGeocodeOrder:
		var p GeocodeOrderPayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", a.Type, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, a.Type)
	}
}

// Validate checks that the Action carries a known type and a payload.
// PRE: Action struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Action) Validate() error {
	switch a.Type {
	case TypeCreateOrder, TypeUpdateOrder, TypeDeleteOrder, TypeGeocodeOrder:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, a.Type)
	}
	if len(a.Payload) == 0 {
		return ErrEmptyPayload
	}
	return nil
}
