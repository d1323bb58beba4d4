package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ServiceName    = "beer-stock"
	ServiceVersion = "0.1.0"
)

const (
	TracesPath      = "/otlp/v1/traces"
	LogsPath        = "/otlp/v1/logs"
	ExportTimeout   = 30 * time.Second
	MaxQueueSize    = 2048
	ShutdownTimeout = 5 * time.Second
)

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	StoreDriver       string
	MySQLDSN          string
	PostgresDSN       string
	RedisAddr         string
	AdjustMaxAttempts int
	OtelEndpoint      string
	OtelAuthHeader    string
	ConsulHost        string
	ServiceName       string
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	// a missing .env is fine, the environment alone is enough
	_ = godotenv.Load(envFiles...)

	attempts, err := strconv.Atoi(getEnv("ADJUST_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADJUST_MAX_ATTEMPTS: %w", err)
	}

	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:          getEnv("GRPC_ADDR", ":50051"),
		StoreDriver:       getEnv("STORE_DRIVER", DriverMemory),
		MySQLDSN:          os.Getenv("MYSQL_DSN"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		AdjustMaxAttempts: attempts,
		OtelEndpoint:      os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader:    os.Getenv("OTEL_AUTH_HEADER"),
		ConsulHost:        os.Getenv("CONSUL_HOST"),
		ServiceName:       getEnv("SERVICE_NAME", ServiceName),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverRedis:
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN environment variable is required for store driver %s", c.StoreDriver)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN environment variable is required for store driver %s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.AdjustMaxAttempts < 1 {
		return fmt.Errorf("ADJUST_MAX_ATTEMPTS must be positive, got %d", c.AdjustMaxAttempts)
	}
	if c.OtelEndpoint != "" && c.OtelAuthHeader == "" {
		return fmt.Errorf("OTEL_AUTH_HEADER environment variable is required when OTEL_ENDPOINT is set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
