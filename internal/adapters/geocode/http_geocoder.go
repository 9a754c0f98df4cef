package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"courier/internal/domain/order"
)

const defaultTimeout = 10 * time.Second

// HTTPGeocoder resolves addresses against a Google-style geocoding
// JSON endpoint.
type HTTPGeocoder struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPGeocoder creates a geocoder for the given endpoint and key.
// PRE: baseURL is a valid URL; apiKey is a valid provider key
// POST: Returns a ready-to-use geocoder
func NewHTTPGeocoder(baseURL, apiKey string) *HTTPGeocoder {
	return &HTTPGeocoder{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// geocodeResponse mirrors the provider's JSON shape.
type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve turns an address into coordinates. Transport failures and
// provider-side rejections both collapse into ErrUnresolved.
// PRE: address is non-empty
// POST: Returns coordinates or an error wrapping ErrUnresolved
func (g *HTTPGeocoder) Resolve(ctx context.Context, address string) (order.Coordinates, error) {
	endpoint := fmt.Sprintf("%s?address=%s&key=%s",
		g.baseURL, url.QueryEscape(address), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return order.Coordinates{}, fmt.Errorf("%w: build request: %v", ErrUnresolved, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		slog.Warn("geocode_transport_failed", "error", err.Error())
		return order.Coordinates{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}
	defer resp.Body.Close()

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Warn("geocode_decode_failed", "error", err.Error())
		return order.Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrUnresolved, err)
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		slog.Warn("geocode_failed", "status", body.Status, "error_message", body.ErrorMessage)
		return order.Coordinates{}, fmt.Errorf("%w: status %s", ErrUnresolved, body.Status)
	}

	loc := body.Results[0].Geometry.Location
	return order.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
