package order

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxCustomerLength = 100
	MaxAddressLength  = 200
)

// Order status constants.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusAccepted, StatusCompleted, StatusRejected}

// Domain errors
var (
	ErrEmptyID           = errors.New("order id cannot be empty")
	ErrEmptyCustomer     = errors.New("customer name cannot be empty")
	ErrEmptyAddress      = errors.New("delivery address cannot be empty")
	ErrNoItems           = errors.New("order must contain at least one item")
	ErrInvalidStatus     = errors.New("status must be one of: pending, accepted, completed, rejected")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition is not allowed")
)

// Order holds state for a delivery order. Lat/Lng stay nil until
// geocoding succeeds.
type Order struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	Address   string    `json:"address"`
	Items     []string  `json:"items"`
	Status    string    `json:"status"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is what the selection observer receives when an order is
// accepted. Lat/Lng are (0, 0) when the order has no coordinates yet.
type Location struct {
	ID      string  `json:"id"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// NewID returns a millisecond-resolution time-based order id.
// Ids are assigned once at creation and never change.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// ParseItems splits raw multi-line item input into individual items,
// dropping blank lines.
// PRE: raw may be empty
// POST: Returns trimmed, non-empty lines in input order
func ParseItems(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Validate checks if the Order has valid data.
// PRE: Order struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(o.Customer) == "" {
		return ErrEmptyCustomer
	}
	if len(o.Customer) > MaxCustomerLength {
		return errors.New("customer name cannot exceed 100 characters")
	}
	if strings.TrimSpace(o.Address) == "" {
		return ErrEmptyAddress
	}
	if len(o.Address) > MaxAddressLength {
		return errors.New("delivery address cannot exceed 200 characters")
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item) == "" {
			return errors.New("order items cannot be blank")
		}
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// HasCoordinates returns true once geocoding has resolved the address.
// INVARIANT: Order fields are not mutated
func (o *Order) HasCoordinates() bool {
	return o.Lat != nil && o.Lng != nil
}

// SetCoordinates records a resolved position on the order.
func (o *Order) SetCoordinates(c Coordinates) {
	lat, lng := c.Lat, c.Lng
	o.Lat = &lat
	o.Lng = &lng
}

// CanTransition reports whether moving to the given status is legal.
// The lifecycle is pending -> accepted -> completed, with pending ->
// rejected as the only other exit. Rejected and completed are terminal,
// and nothing ever returns to pending.
// INVARIANT: Order fields are not mutated
func (o *Order) CanTransition(to string) bool {
	switch o.Status {
	case StatusPending:
		return to == StatusAccepted || to == StatusRejected
	case StatusAccepted:
		return to == StatusCompleted
	default:
		return false
	}
}

// Accept moves a pending order to accepted.
// PRE: Order status is pending
// POST: Status is accepted
func (o *Order) Accept() error {
	if !o.CanTransition(StatusAccepted) {
		return ErrInvalidTransition
	}
	o.Status = StatusAccepted
	return nil
}

// Reject moves a pending order to the terminal rejected status.
// PRE: Order status is pending
// POST: Status is rejected
func (o *Order) Reject() error {
	if !o.CanTransition(StatusRejected) {
		return ErrInvalidTransition
	}
	o.Status = StatusRejected
	return nil
}

// Complete moves an accepted order to the terminal completed status.
// PRE: Order status is accepted
// POST: Status is completed
func (o *Order) Complete() error {
	if !o.CanTransition(StatusCompleted) {
		return ErrInvalidTransition
	}
	o.Status = StatusCompleted
	return nil
}

// Location builds the position handed to the selection observer. The
// second return value is false when the order is not geocoded yet and
// the zero-coordinate fallback was used.
func (o *Order) Location() (Location, bool) {
	loc := Location{ID: o.ID, Address: o.Address}
	if !o.HasCoordinates() {
		return loc, false
	}
	loc.Lat = *o.Lat
	loc.Lng = *o.Lng
	return loc, true
}

// Patch carries a partial update for an order. Nil fields are left
// untouched by Apply.
type Patch struct {
	Status *string
	Lat    *float64
	Lng    *float64
}

// StatusPatch returns a Patch that only changes the status.
func StatusPatch(status string) Patch {
	return Patch{Status: &status}
}

// CoordsPatch returns a Patch that only sets coordinates.
func CoordsPatch(c Coordinates) Patch {
	lat, lng := c.Lat, c.Lng
	return Patch{Lat: &lat, Lng: &lng}
}

// Apply merges the patch into the order. Last write wins; no
// version or sequence check is performed.
// POST: Non-nil patch fields overwrite the corresponding order fields
func (p Patch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Lat != nil {
		lat := *p.Lat
		o.Lat = &lat
	}
	if p.Lng != nil {
		lng := *p.Lng
		o.Lng = &lng
	}
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}
