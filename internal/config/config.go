package config

import (
	"time"

	"github.com/spf13/viper"
)

// Session store backings.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Credential verification modes.
const (
	AuthModeOIDC   = "oidc"
	AuthModeStatic = "static"
)

type Config struct {
	AppPort string
	Stage   string

	SessionBackend string
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	AuthMode      string
	StaticTokens  string
	OIDCIssuer    string
	OIDCAudience  string
	OIDCPublicKey string
	VerifyTimeout time.Duration
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("STAGE", "local")
	v.SetDefault("SESSION_BACKEND", BackendMemory)
	v.SetDefault("SESSION_TTL", "10m")
	v.SetDefault("AUTH_MODE", AuthModeStatic)
	v.SetDefault("VERIFY_TIMEOUT", "5s")

	return Config{
		AppPort: v.GetString("APP_PORT"),
		Stage:   v.GetString("STAGE"),

		SessionBackend: v.GetString("SESSION_BACKEND"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		DatabaseDSN: v.GetString("DATABASE_DSN"),

		AuthMode:      v.GetString("AUTH_MODE"),
		StaticTokens:  v.GetString("STATIC_TOKENS"),
		OIDCIssuer:    v.GetString("OIDC_ISSUER"),
		OIDCAudience:  v.GetString("OIDC_AUDIENCE"),
		OIDCPublicKey: v.GetString("OIDC_PUBLIC_KEY"),
		VerifyTimeout: v.GetDuration("VERIFY_TIMEOUT"),
	}
}
