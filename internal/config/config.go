package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries everything the server and scheduler processes read from the
// environment. Defaults follow the deployment cadence the jobs were designed
// around: 30s dispatch/connection polls, daily retention sweep.
type Config struct {
	DatabaseURL string
	HTTPAddr    string
	MetricsAddr string

	CloudAPIBaseURL  string
	DeviceGatewayURL string

	DispatchInterval   time.Duration
	ConnectionInterval time.Duration
	CleanupInterval    time.Duration
	SendDelay          time.Duration
	WebhookTimeout     time.Duration
}

func Load() *Config {
	return &Config{
		DatabaseURL: databaseURL(),
		HTTPAddr:    envString("HTTP_ADDR", ":8080"),
		MetricsAddr: envString("METRICS_ADDR", ":9090"),

		CloudAPIBaseURL:  envString("CLOUD_API_BASE_URL", "https://graph.facebook.com"),
		DeviceGatewayURL: envString("DEVICE_GATEWAY_URL", "http://localhost:8084"),

		DispatchInterval:   envDuration("DISPATCH_INTERVAL", 30*time.Second),
		ConnectionInterval: envDuration("CONNECTION_INTERVAL", 30*time.Second),
		CleanupInterval:    envDuration("CLEANUP_INTERVAL", 24*time.Hour),
		SendDelay:          envDuration("SEND_DELAY", 100*time.Millisecond),
		WebhookTimeout:     envDuration("WEBHOOK_TIMEOUT", 10*time.Second),
	}
}

// databaseURL prefers DATABASE_URL and otherwise composes a DSN from the
// individual DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	user := envString("DB_USER", "postgres")
	pass := envString("DB_PASSWORD", "postgres")
	host := envString("DB_HOST", "localhost")
	port := envString("DB_PORT", "5432")
	name := envString("DB_NAME", "zapflow")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
