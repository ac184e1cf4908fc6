package config

import (
	"os"
	"strings"
	"time"

	"github.com/juju/errors"
)

// Backend names accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the process configuration. Everything comes from the environment.
type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	LogConfig      string

	Store Store
	Auth  Auth
}

// Store selects and parameterises the fun fact backend.
type Store struct {
	Backend     string
	MongoURL    string
	MongoDB     string
	DatabaseURL string
	SQLitePath  string
}

// Auth controls the guard in front of the mutating fun fact routes.
type Auth struct {
	// Unprotected, when true, disables every write check. Meant for local/dev.
	Unprotected bool
	JWTIssuer   string
	JWTAudience string
	AdminToken  string
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogConfig: getEnv("LOG_CONFIG", "<root>=INFO"),
		Store: Store{
			Backend:     strings.ToLower(os.Getenv("STORE_BACKEND")),
			MongoURL:    os.Getenv("MONGO_URL"),
			MongoDB:     getEnv("MONGO_DB", "statesapi"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SQLitePath:  getEnv("SQLITE_PATH", "statesapi.db"),
		},
		Auth: Auth{
			Unprotected: isTrue(os.Getenv("UNPROTECTED")),
			JWTIssuer:   os.Getenv("JWT_ISSUER"),
			JWTAudience: os.Getenv("JWT_AUDIENCE"),
			AdminToken:  os.Getenv("ADMIN_TOKEN"),
		},
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, errors.NewNotValid(err, "REQUEST_TIMEOUT")
	}
	cfg.RequestTimeout = timeout

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
		if cfg.Store.MongoURL != "" {
			cfg.Store.Backend = BackendMongo
		}
	}
	switch cfg.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendMongo:
		if cfg.Store.MongoURL == "" {
			return Config{}, errors.NotValidf("STORE_BACKEND=mongo without MONGO_URL")
		}
	case BackendPostgres:
		if cfg.Store.DatabaseURL == "" {
			return Config{}, errors.NotValidf("STORE_BACKEND=postgres without DATABASE_URL")
		}
	default:
		return Config{}, errors.NotValidf("STORE_BACKEND %q", cfg.Store.Backend)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
