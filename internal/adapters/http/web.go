package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"courier/internal/adapters/geocode"
	"courier/internal/adapters/http/middleware"
	actionStore "courier/internal/adapters/storage/action"
	authStore "courier/internal/adapters/storage/auth"
	orderStore "courier/internal/adapters/storage/order"
	"courier/internal/application/orchestrators"
)

// Deps holds everything the handlers need: the stores, the sync
// engine, connectivity and the geocoder.
type Deps struct {
	OrderStore  orderStore.Store
	ActionStore actionStore.Store
	AuthStore   authStore.Store
	Geocoder    geocode.Geocoder
	Network     orchestrators.ConnectivityFeed
	Engine      *orchestrators.SyncEngine
	Observer    orchestrators.SelectionObserver // optional
}

// Global deps instance (set by NewMux)
var deps *Deps

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey decodes the CSRF secret (hex-encoded, 32 bytes). In
// production, the key MUST be configured. In development, a random key
// is generated per startup.
func loadCSRFKey(keyHex string) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("csrf key must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("COURIER_ENV") == "production" {
		log.Fatal("csrf key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (form tokens won't survive restart). Configure csrf_key for production.")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, d *Deps, csrfKeyHex string) http.Handler {
	deps = d

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	csrfKey := loadCSRFKey(csrfKeyHex)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}

// registerRoutes attaches every API route to the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/orders", handleOrders)
	mux.HandleFunc("/api/orders/accept", handleAcceptOrder)
	mux.HandleFunc("/api/orders/reject", handleRejectOrder)
	mux.HandleFunc("/api/orders/complete", handleCompleteOrder)
	mux.HandleFunc("/api/sync", handleSync)
	mux.HandleFunc("/api/auth/login", handleLogin)
	mux.HandleFunc("/api/auth/session", handleSession)
	mux.HandleFunc("/api/health", handleHealth)
}
