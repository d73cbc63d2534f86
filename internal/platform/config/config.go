package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DBDriver      string
	DatabaseURL   string
	SQLitePath    string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string
	JWTIssuer string
	// AllowAllTenants lets tokens without a tenants claim reach every tenant.
	AllowAllTenants bool

	RateLimit          string
	CORSAllowedOrigins []string

	OTelEndpoint    string
	OTelServiceName string

	// Ledger behaviour
	RequireFiscalPeriod bool
	DefaultPageSize     int
	MaxPageSize         int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_ALLOW_ALL_TENANTS", false)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "school-ledger")
	v.SetDefault("LEDGER_REQUIRE_FISCAL_PERIOD", false)
	v.SetDefault("LEDGER_DEFAULT_PAGE_SIZE", 50)
	v.SetDefault("LEDGER_MAX_PAGE_SIZE", 500)

	// Values from .env are already in the environment; real environment variables win.
	v.AutomaticEnv()

	cfg := &Config{
		DBDriver:            strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:         v.GetString("PGSQL_URL"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		AllowAllTenants:     v.GetBool("JWT_ALLOW_ALL_TENANTS"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		OTelEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName:     v.GetString("OTEL_SERVICE_NAME"),
		RequireFiscalPeriod: v.GetBool("LEDGER_REQUIRE_FISCAL_PERIOD"),
		DefaultPageSize:     v.GetInt("LEDGER_DEFAULT_PAGE_SIZE"),
		MaxPageSize:         v.GetInt("LEDGER_MAX_PAGE_SIZE"),
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when DB_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH must be set when DB_DRIVER is %q", DriverSQLite)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		log.Printf("Warning: LEDGER_MAX_PAGE_SIZE (%d) is below LEDGER_DEFAULT_PAGE_SIZE. Raising it to %d.\n", cfg.MaxPageSize, cfg.DefaultPageSize)
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
