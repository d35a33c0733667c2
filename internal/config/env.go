package config

import (
	"fmt"
	"strconv"
	"time"
)

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("GRPC_ADDR", &cfg.GRPCAddr)
	if err := boolean("TRUST_PROXY_HEADERS", &cfg.TrustProxyHeaders); err != nil {
		return err
	}

	str("DB_HOST", &cfg.Database.Host)
	str("DB_PORT", &cfg.Database.Port)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	str("DB_SSLMODE", &cfg.Database.SSLMode)
	if err := boolean("DB_RUN_MIGRATIONS", &cfg.Database.RunMigrations); err != nil {
		return err
	}

	str("RABBITMQ_HOST", &cfg.RabbitMQ.Host)
	str("RABBITMQ_PORT", &cfg.RabbitMQ.Port)
	str("RABBITMQ_USER", &cfg.RabbitMQ.User)
	str("RABBITMQ_PASSWORD", &cfg.RabbitMQ.Password)

	str("REDIS_URL", &cfg.Redis.URL)
	if err := dur("CACHE_TTL", &cfg.Redis.CacheTTL); err != nil {
		return err
	}

	str("JWT_SECRET_KEY", &cfg.Auth.JWTSecret)
	if err := boolean("COOKIE_SECURE", &cfg.Auth.CookieSecure); err != nil {
		return err
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if err := dur("BOARD_SESSION_TTL", &cfg.Board.SessionTTL); err != nil {
		return err
	}
	return nil
}
