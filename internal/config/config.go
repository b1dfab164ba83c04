// Package config loads and validates application configuration from an
// optional TOML file and environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration values for the planner server.
// Values are populated by Load.
type Config struct {
	// Host is the listen address. Defaults to loopback: the API serves a
	// single local user.
	Host string

	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"], the map front end dev server.
	CORSOrigins []string

	// VisaAPIBaseURL is the passport visa data service.
	VisaAPIBaseURL string

	// VisaAPITimeout bounds each upstream request.
	VisaAPITimeout time.Duration

	// VisaCacheTTL is how long fetched requirements stay fresh. Zero keeps
	// them until a refresh.
	VisaCacheTTL time.Duration

	// StoreDriver selects the snapshot store: sqlite or postgres.
	StoreDriver string

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string

	// DatabaseURL is the Postgres connection string. Required by the
	// postgres driver.
	DatabaseURL string
}

// Addr returns host:port for http.Server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// fileConfig mirrors Config in the TOML file. Durations are strings such
// as "10s" or "24h".
type fileConfig struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	LogLevel       string   `toml:"log_level"`
	CORSOrigins    []string `toml:"cors_origins"`
	VisaAPIBaseURL string   `toml:"visa_api_base_url"`
	VisaAPITimeout string   `toml:"visa_api_timeout"`
	VisaCacheTTL   string   `toml:"visa_cache_ttl"`
	StoreDriver    string   `toml:"store_driver"`
	SQLitePath     string   `toml:"sqlite_path"`
	DatabaseURL    string   `toml:"database_url"`
}

// Load reads the TOML file named by CONFIG_FILE, if any, then applies
// environment variables on top. Non-empty env vars win.
// Returns one error listing every missing or invalid value.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		md, err := toml.DecodeFile(path, &file)
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config.Load: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg := Config{
		Host:           getEnv("HOST", or(file.Host, "127.0.0.1")),
		Port:           getEnv("PORT", or(file.Port, "8080")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", or(file.LogLevel, "info"))),
		VisaAPIBaseURL: getEnv("VISA_API_BASE_URL", or(file.VisaAPIBaseURL, "https://rough-sun-2523.fly.dev")),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", or(file.StoreDriver, DriverSQLite))),
		SQLitePath:     getEnv("SQLITE_PATH", or(file.SQLitePath, "visa-planner.db")),
		DatabaseURL:    getEnv("DATABASE_URL", file.DatabaseURL),
	}
	cfg.CORSOrigins = splitCSV(os.Getenv("CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	}

	var problems []string

	var err error
	if cfg.VisaAPITimeout, err = parseDuration("VISA_API_TIMEOUT", file.VisaAPITimeout, "10s"); err != nil {
		problems = append(problems, err.Error())
	} else if cfg.VisaAPITimeout <= 0 {
		problems = append(problems, "VISA_API_TIMEOUT must be positive")
	}
	if cfg.VisaCacheTTL, err = parseDuration("VISA_CACHE_TTL", file.VisaCacheTTL, "24h"); err != nil {
		problems = append(problems, err.Error())
	} else if cfg.VisaCacheTTL < 0 {
		problems = append(problems, "VISA_CACHE_TTL must not be negative")
	}

	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %q is not a valid port", cfg.Port))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q must be one of debug, info, warn, error", cfg.LogLevel))
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER %q must be sqlite or postgres", cfg.StoreDriver))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// parseDuration reads key from the environment, then the file value, then
// fallback.
func parseDuration(key, fileValue, fallback string) (time.Duration, error) {
	raw := getEnv(key, or(fileValue, fallback))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a duration", key, raw)
	}
	return d, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
