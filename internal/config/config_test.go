package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 3000},
		RPC:      RPCConfig{Port: 50051},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "http port out of range",
			mutate: func(c *Config) { c.HTTP.Port = 70000 },
			want:   "http.port must be between 1 and 65535, got 70000",
		},
		{
			name:   "rpc port negative",
			mutate: func(c *Config) { c.RPC.Port = -1 },
			want:   "rpc.port must be between 1 and 65535, got -1",
		},
		{
			name:   "ports collide",
			mutate: func(c *Config) { c.RPC.Port = c.HTTP.Port },
			want:   "rpc.port and http.port must differ, both are 3000",
		},
		{
			name:   "endpoint path without slash",
			mutate: func(c *Config) { c.RPC.EndpointPath = "rpc" },
			want:   `rpc.endpoint_path must start with /, got "rpc"`,
		},
		{
			name:   "redis without addrs",
			mutate: func(c *Config) { c.Database.Addrs = nil },
			want:   "database.addrs is required",
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Database.Driver = "mongo" },
			want:   `database.driver must be one of redis, bleve, sqlite, got "mongo"`,
		},
		{
			name:   "batch too large",
			mutate: func(c *Config) { c.Ingest.BatchSize = 5001 },
			want:   "ingest.batch_size must not exceed 5000, got 5001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_EmbeddedDriversNeedNoAddrs(t *testing.T) {
	for _, driver := range []string{DriverBleve, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = driver
			cfg.Database.Addrs = nil
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 3000 {
		t.Errorf("http port = %d, want 3000", cfg.HTTP.Port)
	}
	if cfg.RPC.Port != 50051 {
		t.Errorf("rpc port = %d, want 50051", cfg.RPC.Port)
	}
	if cfg.RPC.EndpointPath != "/rpc" {
		t.Errorf("endpoint path = %q, want /rpc", cfg.RPC.EndpointPath)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("driver = %q, want redis", cfg.Database.Driver)
	}
	if cfg.Ingest.BatchSize != 5000 {
		t.Errorf("batch size = %d, want 5000", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.MaxDepth != 64 {
		t.Errorf("max depth = %d, want 64", cfg.Ingest.MaxDepth)
	}
	if cfg.Index.Collection != "questions" {
		t.Errorf("collection = %q, want questions", cfg.Index.Collection)
	}
	if cfg.Ingest.LockPath == "" {
		t.Error("lock path should be set")
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("QS_TEST_ADDR", "redis.internal:6380")

	cfg, err := Parse([]byte(`
http:
  port: 8080
database:
  driver: redis
  addrs: ["${QS_TEST_ADDR}"]
  password: "${QS_TEST_UNSET:-fallback}"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Addrs[0] != "redis.internal:6380" {
		t.Errorf("addr = %q", cfg.Database.Addrs[0])
	}
	if cfg.Database.Password != "fallback" {
		t.Errorf("password = %q, want fallback", cfg.Database.Password)
	}
	if cfg.ReadinessTimeout().Seconds() != 10 {
		t.Errorf("readiness timeout = %v", cfg.ReadinessTimeout())
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: redis\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "database.addrs is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.Collection == "" {
		t.Error("collection should be set")
	}
}
