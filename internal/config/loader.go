package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Driver names accepted by MEATUP_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSQLiteDSN = "file:meatup.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Config captures environment driven configuration values for the meatup service.
type Config struct {
	HTTPPort     int
	DBDriver     string
	DatabaseURL  string
	SessionTTL   time.Duration
	CookieSecure bool
	LogLevel     string
	Identity     IdentityConfig
	// PublicURL is the externally visible base URL used in invitations.
	PublicURL string
	// BootstrapAdminEmail, when set, is provisioned as an active admin at
	// startup if no member with that email exists.
	BootstrapAdminEmail string
}

// IdentityConfig describes how identity provider tokens are verified.
type IdentityConfig struct {
	Issuer        string
	Audience      string
	HMACSecret    string
	PublicKeyPEM  []byte
	PublicKeyPath string
}

// Load reads an optional .env file and then parses the process environment.
//
// MEATUP_ENV_FILE selects a different file; a missing default .env is not an
// error. Missing and invalid variables are reported together.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv("MEATUP_ENV_FILE"))
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from the supplied lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		HTTPPort:     8080,
		DBDriver:     DriverSQLite,
		DatabaseURL:  defaultSQLiteDSN,
		SessionTTL:   720 * time.Hour,
		CookieSecure: true,
		LogLevel:     "info",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := get("MEATUP_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "MEATUP_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.ToLower(get("MEATUP_DB_DRIVER")); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = driver
		default:
			invalid = append(invalid, "MEATUP_DB_DRIVER")
		}
	}

	if dsn := get("MEATUP_DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	} else if cfg.DBDriver == DriverPostgres {
		missing = append(missing, "MEATUP_DATABASE_URL")
	}

	if ttlValue := get("MEATUP_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEATUP_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if secure := get("MEATUP_COOKIE_SECURE"); secure != "" {
		parsed, err := strconv.ParseBool(secure)
		if err != nil {
			invalid = append(invalid, "MEATUP_COOKIE_SECURE")
		} else {
			cfg.CookieSecure = parsed
		}
	}

	if level := get("MEATUP_LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	cfg.PublicURL = strings.TrimRight(get("MEATUP_PUBLIC_URL"), "/")
	if cfg.PublicURL == "" {
		cfg.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPPort)
	}
	cfg.BootstrapAdminEmail = get("MEATUP_BOOTSTRAP_ADMIN_EMAIL")

	cfg.Identity.Issuer = get("MEATUP_IDP_ISSUER")
	cfg.Identity.Audience = get("MEATUP_IDP_AUDIENCE")
	cfg.Identity.HMACSecret = get("MEATUP_IDP_HMAC_SECRET")
	cfg.Identity.PublicKeyPath = get("MEATUP_IDP_PUBLIC_KEY_FILE")

	if cfg.Identity.PublicKeyPath != "" {
		pem, err := os.ReadFile(cfg.Identity.PublicKeyPath)
		if err != nil {
			invalid = append(invalid, "MEATUP_IDP_PUBLIC_KEY_FILE")
		} else {
			cfg.Identity.PublicKeyPEM = pem
		}
	}
	if cfg.Identity.HMACSecret == "" && cfg.Identity.PublicKeyPath == "" {
		missing = append(missing, "MEATUP_IDP_HMAC_SECRET or MEATUP_IDP_PUBLIC_KEY_FILE")
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
