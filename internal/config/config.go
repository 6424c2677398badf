// Package config resolves application settings from the environment. A
// .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/routing"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath  string
	LogMode string

	AutosaveDelay time.Duration
	RetryDelay    time.Duration
	// SaveRPS limits journey writes. Zero means unlimited.
	SaveRPS   float64
	SaveBurst int

	RoutingEnabled bool
	Routing        routing.Config

	// WebContext asks the oracle to ground answers in live web results.
	WebContext bool

	Identity domain.Identity
	LLM      llm.LLMConfig
}

// Load reads the environment, after loading .env if it exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPath := strings.TrimSpace(os.Getenv("ITINERA_DB"))
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".itinera", "itinera.db")
	}

	cfg := &Config{
		DBPath:         dbPath,
		LogMode:        strings.TrimSpace(os.Getenv("ITINERA_LOG_MODE")),
		AutosaveDelay:  envMillis("ITINERA_AUTOSAVE_DELAY_MS", autosave.DefaultDelay),
		RetryDelay:     envMillis("ITINERA_AUTOSAVE_RETRY_MS", autosave.DefaultRetryDelay),
		SaveRPS:        envFloat("ITINERA_SAVE_RPS", 0),
		SaveBurst:      envInt("ITINERA_SAVE_BURST", 1),
		RoutingEnabled: envBool("ITINERA_ROUTING_ENABLED", true),
		Routing:        routing.DefaultConfig(),
		WebContext:     envBool("ITINERA_WEB_CONTEXT", false),
		Identity: domain.Identity{
			UserID: firstNonEmpty(os.Getenv("ITINERA_USER"), os.Getenv("USER")),
			Role:   firstNonEmpty(os.Getenv("ITINERA_ROLE"), "user"),
		},
		LLM: llm.LoadConfig(),
	}
	if v := strings.TrimSpace(os.Getenv("ITINERA_ROUTING_ENDPOINT")); v != "" {
		cfg.Routing.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("ITINERA_GEOCODER_ENDPOINT")); v != "" {
		cfg.Routing.GeocoderEndpoint = v
	}
	return cfg, nil
}

func envMillis(key string, def time.Duration) time.Duration {
	if n := envInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
