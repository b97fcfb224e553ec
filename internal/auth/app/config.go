package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is read from the environment, optionally layered over the file
// named by SESSIOND_CONFIG.
type Config struct {
	Env                  string        `mapstructure:"ENV"`                   // dev, staging, prod
	LogLevel             string        `mapstructure:"LOG_LEVEL"`             // debug, info, warn, error
	LogFormat            string        `mapstructure:"LOG_FORMAT"`            // json, text
	Port                 int           `mapstructure:"PORT"`                  // HTTP listen port
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"` // graceful shutdown timeout
	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"` // stale session sweep period

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // sqlite or postgres
	DatabaseURL    string `mapstructure:"DATABASE_URL"`    // sqlite file path or postgres DSN

	Issuer             string        `mapstructure:"AUTH_ISSUER"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`           // signs access tokens
	JWTRefreshSecret   string        `mapstructure:"JWT_REFRESH_SECRET"`   // keys the refresh secret digest
	JWTPreviousSecrets []string      `mapstructure:"JWT_PREVIOUS_SECRETS"` // retired signing secrets, still verified
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	PepperFile   string `mapstructure:"AUTH_PEPPER_FILE"`
	CookieSecure bool   `mapstructure:"COOKIE_SECURE"`
	CookieDomain string `mapstructure:"COOKIE_DOMAIN"`

	// BootstrapAdminEmails register as super_admin.
	BootstrapAdminEmails []string `mapstructure:"BOOTSTRAP_ADMIN_EMAILS"`
}

// LoadConfig builds the configuration and validates it. Missing or weak
// secrets are an error; the service must not start without them.
func LoadConfig() (Config, error) {
	v := viper.New()

	if path := os.Getenv("SESSIOND_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second)
	v.SetDefault("HOUSEKEEPING_INTERVAL", time.Hour)
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "sessiond.db")
	v.SetDefault("AUTH_ISSUER", "sessiond")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_PREVIOUS_SECRETS", []string{})
	v.SetDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL)
	v.SetDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL)
	v.SetDefault("AUTH_PEPPER_FILE", "pepper")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAILS", []string{})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants LoadConfig relies on. It is exported for
// callers that build a Config by hand.
func (c Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("config: JWT_SECRET must be set")
	case c.JWTRefreshSecret == "":
		return errors.New("config: JWT_REFRESH_SECRET must be set")
	case len(c.JWTSecret) < jwtx.MinSecretSize:
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", jwtx.MinSecretSize)
	case len(c.JWTRefreshSecret) < jwtx.MinSecretSize:
		return fmt.Errorf("config: JWT_REFRESH_SECRET must be at least %d bytes", jwtx.MinSecretSize)
	case c.JWTSecret == c.JWTRefreshSecret:
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	for _, prev := range c.JWTPreviousSecrets {
		if len(prev) < jwtx.MinSecretSize {
			return fmt.Errorf("config: every JWT_PREVIOUS_SECRETS entry must be at least %d bytes", jwtx.MinSecretSize)
		}
	}

	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	// Browsers drop __Secure- prefixed cookies that are not marked Secure.
	if !c.CookieSecure {
		return errors.New("config: COOKIE_SECURE must be true; session cookies use the __Secure- prefix")
	}
	return nil
}
