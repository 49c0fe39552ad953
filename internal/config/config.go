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

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	DB          DatabaseConfig
	Redis       RedisConfig
	Broadband   BroadbandConfig
	Kafka       KafkaConfig
	Worker      WorkerConfig
	Billing     BillingConfig
	Bootstrap   BootstrapConfig
	Diagnostics DiagnosticsConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BroadbandConfig contains the Broadband.is API endpoint and one credential
// pair per master category.
type BroadbandConfig struct {
	BaseURL string
	Timeout time.Duration

	FixedUsername string
	FixedPassword string
	GSMUsername   string
	GSMPassword   string
}

// KafkaConfig configures the order event publisher. An empty broker list
// disables publishing.
type KafkaConfig struct {
	Brokers          []string
	OrderEventsTopic string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	StaleOrderInterval time.Duration
	StaleOrderAfter    time.Duration
}

// BillingConfig controls credit handling on order approval.
type BillingConfig struct {
	ChargeOnApproval bool
}

// BootstrapConfig seeds the first admin account on an empty database.
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

// DiagnosticsConfig sizes the in-memory error buffer.
type DiagnosticsConfig struct {
	Capacity int
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", "localhost:5173,127.0.0.1:5173")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Broadband.is
	cfg.Broadband = BroadbandConfig{
		BaseURL:       getEnv("BROADBAND_BASE_URL", "https://www.broadband.is/api"),
		FixedUsername: getEnv("BROADBAND_FIXED_USERNAME", ""),
		FixedPassword: getEnv("BROADBAND_FIXED_PASSWORD", ""),
		GSMUsername:   getEnv("BROADBAND_GSM_USERNAME", ""),
		GSMPassword:   getEnv("BROADBAND_GSM_PASSWORD", ""),
	}

	// Kafka
	cfg.Kafka = KafkaConfig{
		Brokers:          getEnvList("KAFKA_BROKERS", ""),
		OrderEventsTopic: getEnv("KAFKA_TOPIC_ORDER_EVENTS", "reseller.order-events"),
	}

	cfg.Billing = BillingConfig{
		ChargeOnApproval: getEnvBool("BILLING_CHARGE_ON_APPROVAL", true),
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	cfg.Diagnostics = DiagnosticsConfig{
		Capacity: getEnvInt("DIAGNOSTICS_CAPACITY", 100),
	}
	if cfg.Diagnostics.Capacity <= 0 {
		return nil, errors.New("DIAGNOSTICS_CAPACITY must be > 0")
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Broadband.Timeout, err = parseDurationEnv("BROADBAND_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid BROADBAND_TIMEOUT: %w", err)
	}
	if cfg.Worker.StaleOrderInterval, err = parseDurationEnv("STALE_ORDER_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid STALE_ORDER_INTERVAL: %w", err)
	}
	if cfg.Worker.StaleOrderAfter, err = parseDurationEnv("STALE_ORDER_AFTER", "48h"); err != nil {
		return nil, fmt.Errorf("invalid STALE_ORDER_AFTER: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
