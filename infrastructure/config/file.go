package config

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	domainconfig "github.com/varangian-core/magical-board/domain/config"
)

// fileConfig is the YAML overlay. Keys that are absent keep their defaults;
// the domain block is decoded onto DefaultDomainConfig.
type fileConfig struct {
	Environment    string                     `yaml:"environment"`
	ServerAddress  string                     `yaml:"server_address"`
	LogLevel       string                     `yaml:"log_level"`
	StorageDriver  string                     `yaml:"storage_driver"`
	SQLitePath     string                     `yaml:"sqlite_path"`
	DynamoDBTable  string                     `yaml:"dynamodb_table"`
	EventBusName   string                     `yaml:"event_bus_name"`
	AllowedOrigins []string                   `yaml:"allowed_origins"`
	Domain         *domainconfig.DomainConfig `yaml:"domain"`
}

// readFile parses the overlay at path. An empty path yields defaults.
func readFile(path string) (*fileConfig, error) {
	file := &fileConfig{Domain: domainconfig.DefaultDomainConfig()}
	if path == "" {
		return file, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if file.Domain == nil {
		file.Domain = domainconfig.DefaultDomainConfig()
	}
	return file, nil
}

// readLogLevel returns the log level named in the overlay, if any
func readLogLevel(path string) (zapcore.Level, bool, error) {
	file, err := readFile(path)
	if err != nil {
		return zapcore.InfoLevel, false, err
	}
	if file.LogLevel == "" {
		return zapcore.InfoLevel, false, nil
	}
	level, err := zapcore.ParseLevel(file.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, false, fmt.Errorf("log_level: %w", err)
	}
	return level, true, nil
}
