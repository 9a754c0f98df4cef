package geocode

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain/order"
)

// ErrUnresolved is returned when an address could not be resolved to
// coordinates. Callers must not distinguish "service down" from
// "address not found" — both mean retry later.
var ErrUnresolved = errors.New("address could not be resolved")

// Geocoder resolves a free-form address string to coordinates.
type Geocoder interface {
	// Resolve turns an address into coordinates.
	// PRE: address is non-empty
	// POST: Returns coordinates or an error wrapping ErrUnresolved
	Resolve(ctx context.Context, address string) (order.Coordinates, error)
}

// NoopGeocoder is used when no geocoding provider is configured. Every
// lookup fails as unresolved, so deferred GEOCODE_ORDER actions stay
// queued until a real provider is wired in.
type NoopGeocoder struct{}

// NewNoopGeocoder creates a new NoopGeocoder.
func NewNoopGeocoder() *NoopGeocoder {
	return &NoopGeocoder{}
}

// Resolve logs the lookup and reports it as unresolved.
func (g *NoopGeocoder) Resolve(_ context.Context, address string) (order.Coordinates, error) {
	slog.Info("noop_geocode", "address", address)
	return order.Coordinates{}, ErrUnresolved
}
