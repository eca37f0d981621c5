// Package config loads runtime configuration from the environment. A local
// .env file is honored when present so development setups need no shell
// exports.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration. Secrets have no fallback values:
// a deployment that omits the signing secret or any service key refuses to
// boot instead of running with a guessable credential.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000" json:"http_addr"`
	Debug    bool   `env:"DEBUG" envDefault:"false" json:"debug"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:accounts.db?cache=shared&_pragma=foreign_keys(1)" json:"database_dsn"`
	SeedDemo    bool   `env:"SEED_DEMO_DATA" envDefault:"false" json:"seed_demo"`

	TokenSigningSecret   string `env:"TOKEN_SIGNING_SECRET,required" json:"-"`
	TokenExpirationHours int    `env:"TOKEN_EXPIRATION_HOURS" envDefault:"24" json:"token_expiration_hours"`
	TokenIssuer          string `env:"TOKEN_ISSUER" envDefault:"accounts" json:"token_issuer"`

	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"accounts_admin" json:"session_cookie_name"`

	ClassroomServiceAPIKey string `env:"CLASSROOM_SERVICE_API_KEY,required" json:"-"`
	GameServiceAPIKey      string `env:"GAME_SERVICE_API_KEY,required" json:"-"`
	StoreServiceAPIKey     string `env:"STORE_SERVICE_API_KEY,required" json:"-"`
}

// Load reads .env (when present) and then the process environment. Missing
// required values fail the load.
func Load() (*Config, error) {
	// Ignore the error: the file is optional, the environment is not.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces constraints env tags cannot express.
func (c *Config) Validate() error {
	if len(c.TokenSigningSecret) < 32 {
		return errors.New("TOKEN_SIGNING_SECRET must be at least 32 bytes", errors.CategoryOperation)
	}

	if c.TokenExpirationHours <= 0 {
		return errors.New("TOKEN_EXPIRATION_HOURS must be a positive number of hours", errors.CategoryOperation)
	}

	for _, key := range c.ServiceKeys() {
		if key == "" {
			return errors.New("service API keys must not be empty", errors.CategoryOperation)
		}
	}

	return nil
}

// ServiceKeys returns every key trusted on the machine-to-machine surface.
func (c *Config) ServiceKeys() []string {
	return []string{
		c.ClassroomServiceAPIKey,
		c.GameServiceAPIKey,
		c.StoreServiceAPIKey,
	}
}

// Sanitized returns a copy safe for startup logging. Secrets are already
// excluded from JSON output; this exists so callers never dump the raw
// struct by accident.
func (c *Config) Sanitized() Config {
	out := *c
	out.TokenSigningSecret = "[REDACTED]"
	out.ClassroomServiceAPIKey = "[REDACTED]"
	out.GameServiceAPIKey = "[REDACTED]"
	out.StoreServiceAPIKey = "[REDACTED]"
	return out
}
