package config

import (
	"context"
	"fmt"
	"os"
	"time"

	aws_pkg "github.com/umesh2702/OUTLAW/pkg/aws"
)

// Config holds all environment configuration for the storefront service.
type Config struct {
	Port string
	Env  string

	RedisURL    string
	DatabaseURL string

	// Hosted auth provider (GoTrue-compatible)
	ProviderURL       string
	ProviderKey       string
	ProviderJWTSecret string
	SignupRedirectURL string

	KafkaBrokers  string
	CheckoutTopic string

	UserEventsTopicARN string

	CartTTL    time.Duration
	SessionTTL time.Duration
}

// Load reads the environment into Config. With AWS_USE_SECRETS=true the
// provider credentials are read from Secrets Manager, falling back to env
// vars on failure.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("APP_ENV", "development"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ProviderURL:        os.Getenv("AUTH_PROVIDER_URL"),
		ProviderKey:        os.Getenv("AUTH_PROVIDER_KEY"),
		ProviderJWTSecret:  os.Getenv("AUTH_JWT_SECRET"),
		SignupRedirectURL:  getEnv("SIGNUP_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		CheckoutTopic:      getEnv("KAFKA_CHECKOUT_TOPIC", "checkout.requested"),
		UserEventsTopicARN: os.Getenv("USER_EVENTS_SNS_TOPIC_ARN"),
		CartTTL:            time.Hour * 24 * 7,
		SessionTTL:         time.Hour * 24 * 30,
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)

			if key, err := sm.GetSecret(context.Background(), "storefront/AUTH_PROVIDER_KEY"); err == nil && key != "" {
				cfg.ProviderKey = key
			}
			if secret, err := sm.GetSecret(context.Background(), "storefront/AUTH_JWT_SECRET"); err == nil && secret != "" {
				cfg.ProviderJWTSecret = secret
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ProviderURL == "" {
		return nil, fmt.Errorf("AUTH_PROVIDER_URL is required")
	}
	if cfg.ProviderKey == "" {
		return nil, fmt.Errorf("AUTH_PROVIDER_KEY is required")
	}
	if cfg.ProviderJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
