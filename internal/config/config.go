package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverRedis  = "redis"
	DriverBleve  = "bleve"
	DriverSQLite = "sqlite"
)

// Config holds the questsearch configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	RPC      RPCConfig      `yaml:"rpc"`
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings shared by both listeners.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP listener settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`

	CORSOrigins []string `yaml:"cors_origins"` // empty disables CORS
}

// RPCConfig holds the JSON-RPC listener settings.
type RPCConfig struct {
	Port         int    `yaml:"port"`
	EndpointPath string `yaml:"endpoint_path"`
}

// DatabaseConfig holds index store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, bleve, sqlite (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"` // bleve/sqlite location, empty = in-memory
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig names the collection and its keyspace.
type IndexConfig struct {
	Collection string `yaml:"collection"`
	KeyPrefix  string `yaml:"key_prefix"`
}

// IngestConfig holds corpus loading settings.
type IngestConfig struct {
	BatchSize int    `yaml:"batch_size"`
	MaxDepth  int    `yaml:"max_depth"`
	LockPath  string `yaml:"lock_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes a YAML document, expanding ${VAR} references, then applies
// defaults and validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RPC.Port == 0 {
		c.RPC.Port = 50051
	}
	if c.RPC.EndpointPath == "" {
		c.RPC.EndpointPath = "/rpc"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Collection == "" {
		c.Index.Collection = "questions"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "questsearch:"
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 5000
	}
	if c.Ingest.MaxDepth <= 0 {
		c.Ingest.MaxDepth = 64
	}
	if c.Ingest.LockPath == "" {
		c.Ingest.LockPath = filepath.Join(os.TempDir(), "questsearch-ingest.lock")
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RPC.Port <= 0 || c.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be between 1 and 65535, got %d", c.RPC.Port)
	}
	if c.RPC.Port == c.HTTP.Port {
		return fmt.Errorf("rpc.port and http.port must differ, both are %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.RPC.EndpointPath, "/") {
		return fmt.Errorf("rpc.endpoint_path must start with /, got %q", c.RPC.EndpointPath)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverBleve, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be one of redis, bleve, sqlite, got %q", c.Database.Driver)
	}
	if c.Ingest.BatchSize > 5000 {
		return fmt.Errorf("ingest.batch_size must not exceed 5000, got %d", c.Ingest.BatchSize)
	}
	return nil
}

// ReadinessTimeout returns the database readiness wait as a duration.
func (c *Config) ReadinessTimeout() time.Duration {
	return time.Duration(c.Database.ReadinessTimeout) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file, for tests and `go run` from subdirectories
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
