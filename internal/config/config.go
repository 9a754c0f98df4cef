package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the courier server needs at startup. Every
// field has a working default so the binary runs with no config file at
// all; a TOML file overrides, and a handful of environment variables
// override the file (useful in containers).
type Config struct {
	DBPath     string
	ListenAddr string

	GeocodeBaseURL string
	GeocodeAPIKey  string

	ProbeURL      string
	ProbeInterval time.Duration

	CSRFKey string
}

const (
	defaultConfigPath    = "courier.toml"
	defaultDBPath        = "courier.db"
	defaultListenAddr    = ":8080"
	defaultProbeURL      = "https://clients3.google.com/generate_204"
	defaultProbeInterval = 10 * time.Second
)

// Load parses the config file at path, falling back to defaults when
// the file is missing. An empty path means the default location.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}

	cfg := Config{
		DBPath:        defaultDBPath,
		ListenAddr:    defaultListenAddr,
		ProbeURL:      defaultProbeURL,
		ProbeInterval: defaultProbeInterval,
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	var raw struct {
		DBPath          string `toml:"db_path"`
		ListenAddr      string `toml:"listen_addr"`
		GeocodeBaseURL  string `toml:"geocode_base_url"`
		GeocodeAPIKey   string `toml:"geocode_api_key"`
		ProbeURL        string `toml:"probe_url"`
		ProbeIntervalMs int64  `toml:"probe_interval_ms"`
		CSRFKey         string `toml:"csrf_key"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setIf(&cfg.DBPath, raw.DBPath)
	setIf(&cfg.ListenAddr, raw.ListenAddr)
	setIf(&cfg.GeocodeBaseURL, raw.GeocodeBaseURL)
	setIf(&cfg.GeocodeAPIKey, raw.GeocodeAPIKey)
	setIf(&cfg.ProbeURL, raw.ProbeURL)
	setIf(&cfg.CSRFKey, raw.CSRFKey)
	if raw.ProbeIntervalMs > 0 {
		cfg.ProbeInterval = time.Duration(raw.ProbeIntervalMs) * time.Millisecond
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIf(&cfg.DBPath, os.Getenv("COURIER_DB_PATH"))
	setIf(&cfg.ListenAddr, os.Getenv("COURIER_LISTEN_ADDR"))
	setIf(&cfg.GeocodeBaseURL, os.Getenv("COURIER_GEOCODE_BASE_URL"))
	setIf(&cfg.GeocodeAPIKey, os.Getenv("COURIER_GEOCODE_API_KEY"))
	setIf(&cfg.ProbeURL, os.Getenv("COURIER_PROBE_URL"))
	setIf(&cfg.CSRFKey, os.Getenv("COURIER_CSRF_KEY"))
}

func setIf(dst *string, v string) {
	v = strings.TrimSpace(v)
	if v != "" {
		*dst = v
	}
}
