package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/bandq/devconsole/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	DevAuth  DevAuthConfig
	Provider ProviderConfig
	Audit    AuditConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// DevAuthConfig gates the dev console.
type DevAuthConfig struct {
	Enabled        bool     `env:"DEV_AUTH_ENABLED,         default=false"`
	AllowedEmails  []string `env:"DEV_AUTH_ALLOWED_EMAILS"`
	AllowedDomains []string `env:"DEV_AUTH_ALLOWED_DOMAINS, default=@bandq.jp"`
}

// ProviderConfig points at the identity provider's backend API. An empty
// SecretKey leaves the provider unconfigured; the service still starts.
type ProviderConfig struct {
	APIURL    string        `env:"IDP_API_URL,    default=https://api.clerk.com/v1"`
	SecretKey string        `env:"IDP_SECRET_KEY"`
	Timeout   time.Duration `env:"IDP_TIMEOUT,    default=10s"`
}

type AuditConfig struct {
	Sink    string `env:"AUDIT_SINK,    default=none"`
	Workers int    `env:"AUDIT_WORKERS, default=2"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=devconsole"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

const (
	AuditSinkNone  = "none"
	AuditSinkMongo = "mongo"
	AuditSinkRedis = "redis"
)

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	switch cfg.Audit.Sink {
	case AuditSinkNone, AuditSinkMongo, AuditSinkRedis:
	default:
		return nil, fmt.Errorf("AUDIT_SINK must be one of none, mongo, redis; got %q", cfg.Audit.Sink)
	}
	return &cfg, nil
}

// Policy is the environment policy derived from ENV and DEV_AUTH_ENABLED.
func (c *Config) Policy() domain.EnvironmentPolicy {
	return domain.EnvironmentPolicy{Env: c.Env, DevAuthEnabled: c.DevAuth.Enabled}
}

// Allowlist is the caller allowlist derived from the DEV_AUTH_ALLOWED_* lists.
func (c *Config) Allowlist() domain.Allowlist {
	domains := c.DevAuth.AllowedDomains
	if len(domains) == 0 {
		domains = []string{domain.DefaultAllowedDomain}
	}
	return domain.NewAllowlist(c.DevAuth.AllowedEmails, domains)
}

// ProviderConfigured reports whether identity provider credentials are set.
func (c *Config) ProviderConfigured() bool {
	return c.Provider.SecretKey != ""
}
