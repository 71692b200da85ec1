package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	domainconfig "github.com/varangian-core/magical-board/domain/config"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout int // seconds

	// Storage
	StorageDriver string
	SQLitePath    string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	GSI1IndexName string // kingdom boards and user activity
	GSI2IndexName string // direct element lookups
	EventBusName  string
	EventSource   string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// HTTP
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int

	// Feature flags
	EnableMetrics        bool
	EnableTracing        bool
	EnableCORS           bool
	EnableCircuitBreaker bool
	TracingEndpoint      string

	// ConfigFile is the optional YAML overlay
	ConfigFile string

	// Domain holds the board and timeline rules
	Domain *domainconfig.DomainConfig
}

// LoadConfig loads configuration from the optional YAML file named by
// CONFIG_FILE, then from environment variables, which take precedence
func LoadConfig() (*Config, error) {
	path := getEnv("CONFIG_FILE", "")
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", or(file.ServerAddress, ":8080")),
		Environment:     getEnv("ENVIRONMENT", or(file.Environment, "development")),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 15),

		StorageDriver: getEnv("STORAGE_DRIVER", or(file.StorageDriver, StorageMemory)),
		SQLitePath:    getEnv("SQLITE_PATH", or(file.SQLitePath, "magical-board.db")),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", or(file.DynamoDBTable, "magical-board"))),
		GSI1IndexName: getEnv("GSI1_INDEX_NAME", "GSI1"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "GSI2"),
		EventBusName:  getEnv("EVENT_BUS_NAME", file.EventBusName),
		EventSource:   getEnv("EVENT_SOURCE", "magical-board.api"),

		IsLambda:           getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		LogLevel: getEnv("LOG_LEVEL", or(file.LogLevel, "info")),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", file.AllowedOrigins),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),

		EnableMetrics:        getEnvBool("ENABLE_METRICS", true),
		EnableTracing:        getEnvBool("ENABLE_TRACING", false),
		EnableCORS:           getEnvBool("ENABLE_CORS", true),
		EnableCircuitBreaker: getEnvBool("ENABLE_CIRCUIT_BREAKER", true),
		TracingEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		ConfigFile: path,
		Domain:     file.Domain,
	}
	cfg.Domain.MaxImageStorageBytes = int64(getEnvInt("MAX_IMAGE_STORAGE_BYTES", int(cfg.Domain.MaxImageStorageBytes)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.StorageDriver == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb driver")
	}
	if c.IsProduction() && c.StorageDriver == StorageMemory {
		return fmt.Errorf("the memory driver is not allowed in production")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	if c.Domain == nil {
		return fmt.Errorf("domain configuration is missing")
	}
	if err := c.Domain.Validate(); err != nil {
		return fmt.Errorf("domain: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
