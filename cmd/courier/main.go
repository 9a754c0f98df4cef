package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"courier/internal/adapters/geocode"
	web "courier/internal/adapters/http"
	"courier/internal/adapters/network"
	"courier/internal/adapters/storage"
	actionStore "courier/internal/adapters/storage/action"
	authStore "courier/internal/adapters/storage/auth"
	orderStore "courier/internal/adapters/storage/order"
	"courier/internal/application/orchestrators"
	"courier/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Local database with WAL mode, foreign keys, and busy timeout.
	// This is the offline source of truth; every mutation lands here
	// before anything touches the network.
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	log.Println("Database initialized successfully!")

	timedDB := storage.NewTimedDB(db)

	orders := orderStore.NewSQLiteStore(timedDB)
	actions := actionStore.NewSQLiteStore(timedDB)
	snapshots := authStore.NewSQLiteStore(timedDB)

	// Geocoder: real HTTP resolver when configured, noop otherwise so
	// orders are still created (just without coordinates).
	var geocoder geocode.Geocoder
	if cfg.GeocodeBaseURL != "" {
		geocoder = geocode.NewHTTPGeocoder(cfg.GeocodeBaseURL, cfg.GeocodeAPIKey)
		log.Println("Geocoder configured (HTTP)")
	} else {
		geocoder = geocode.NewNoopGeocoder()
		log.Println("Geocoder configured (noop — set geocode_base_url for real resolution)")
	}

	// Connectivity monitor: periodic reachability probe, transition
	// events feed the sync engine.
	probe := network.NewHTTPProbe(cfg.ProbeURL, 5*time.Second)
	monitor := network.NewMonitor(probe, cfg.ProbeInterval)
	monitor.Start(context.Background())
	defer monitor.Stop()

	// Sync engine: drains the pending-action queue on every reconnect.
	engine := orchestrators.NewSyncEngine(orchestrators.SyncEngineDeps{
		Queue:      actions,
		OrderStore: orders,
		Geocoder:   geocoder,
		Network:    monitor,
	})
	engine.Start()
	defer engine.Stop()

	mux := web.NewMux("static", &web.Deps{
		OrderStore:  orders,
		ActionStore: actions,
		AuthStore:   snapshots,
		Geocoder:    geocoder,
		Network:     monitor,
		Engine:      engine,
	}, cfg.CSRFKey)

	slog.Info("startup", "version", version, "addr", cfg.ListenAddr,
		"env", envOrDefault("COURIER_ENV", "development"), "schema", storage.LatestSchemaVersion())

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	// Stop accepting requests on SIGINT/SIGTERM, then let the deferred
	// engine and monitor stops run so an in-flight sync pass finishes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("shutdown")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
