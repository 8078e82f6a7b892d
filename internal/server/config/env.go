package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "RECIPEBOOK_"

// LoadDotEnv reads variables from the given .env files into the process
// environment. Variables that are already set win; missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// parseEnv overlays cfg with RECIPEBOOK_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &cfg.EndpointAddrHTTP)
	str("GRPC_ADDR", &cfg.EndpointAddrGRPC)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("SECRET_KEY", &cfg.SecretKey)
	str("ISSUER", &cfg.Issuer)
	str("STATIC_DIR", &cfg.StaticDir)
	str("SESSION_STORE", &cfg.SessionStore)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PREFIX", &cfg.RedisPrefix)
	str("PASSWORD_SCHEME", &cfg.PasswordScheme)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)

	if err := dur("TOKEN_VALIDITY", &cfg.TokenValidityDuration); err != nil {
		return err
	}
	if err := dur("HEALTH_CHECK_INTERVAL", &cfg.HealthCheckInterval); err != nil {
		return err
	}
	return dur("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
}
