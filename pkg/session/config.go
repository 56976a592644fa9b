package session

import (
	"time"

	"github.com/dmitrymomot/mango/pkg/environment"
)

// Store backends selectable through SESSION_STORE.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// DefaultRefreshHeader carries the replacement token after a refresh.
const DefaultRefreshHeader = "X-Auth-Token"

// Config holds token lifecycle configuration
type Config struct {
	// Secret signs every token. Required.
	Secret string `env:"JWT_SECRET,required,notEmpty"`

	// ProductionTTL is the token lifetime in production and staging
	ProductionTTL time.Duration `env:"JWT_TTL_PRODUCTION" envDefault:"30m"`

	// DevelopmentTTL is the token lifetime everywhere else
	DevelopmentTTL time.Duration `env:"JWT_TTL_DEVELOPMENT" envDefault:"168h"`

	// RefreshGraceDays is how long after expiry a token may still be exchanged
	RefreshGraceDays int `env:"JWT_REFRESH_GRACE_DAYS" envDefault:"7"`

	// RefreshHeader is the response header that carries a refreshed token
	RefreshHeader string `env:"JWT_REFRESH_HEADER" envDefault:"X-Auth-Token"`

	// Store selects the session store backend: postgres, redis or memory
	Store string `env:"SESSION_STORE" envDefault:"postgres"`

	// RedisPrefix namespaces redis keys when Store is redis
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"mango:session:"`
}

// DefaultConfig returns default configuration without a secret
func DefaultConfig() Config {
	return Config{
		ProductionTTL:    30 * time.Minute,
		DevelopmentTTL:   7 * 24 * time.Hour,
		RefreshGraceDays: 7,
		RefreshHeader:    DefaultRefreshHeader,
		Store:            StorePostgres,
		RedisPrefix:      "mango:session:",
	}
}

// TokenTTL picks the token lifetime for the given environment.
func (c Config) TokenTTL(env environment.Environment) time.Duration {
	if env.IsProductionLike() {
		return c.ProductionTTL
	}
	return c.DevelopmentTTL
}

// Grace returns the refresh grace window.
func (c Config) Grace() time.Duration {
	return time.Duration(c.RefreshGraceDays) * 24 * time.Hour
}
