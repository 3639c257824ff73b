// Package config loads animehub settings from defaults, an optional YAML
// file and ANIMEHUB_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix  = "ANIMEHUB_"
	PathEnvVar = "ANIMEHUB_CONFIG"

	devSecret = "dev-secret-change-me"
)

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/animehub/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	SyncAddr        string        `koanf:"sync_addr"` // empty disables the TCP event stream
	Environment     string        `koanf:"environment"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // sqlite or mysql
	Path         string `koanf:"path"`
	DSN          string `koanf:"dsn"`
	LogLevel     string `koanf:"log_level"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	JWTIssuer  string        `koanf:"jwt_issuer"`
	JWTTTL     time.Duration `koanf:"jwt_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

type SecurityConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests"` // 0 disables
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			SyncAddr:        ":7070",
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Path:         "./data/animehub.db",
			LogLevel:     "warn",
			MaxOpenConns: 1,
		},
		Auth: AuthConfig{
			JWTSecret:  devSecret,
			JWTIssuer:  "animehub",
			JWTTTL:     24 * time.Hour,
			BcryptCost: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
		},
	}
}

// Load reads .env (if present) and then layers defaults, the config file and
// the environment. path overrides the config file search when non-empty.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Security.CORSOrigins = splitList(cfg.Security.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps ANIMEHUB_DATABASE_MAX_OPEN_CONNS to
// database.max_open_conns. The first underscore separates the section.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	return strings.Replace(key, "_", ".", 1)
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.IsProduction() && (c.Auth.JWTSecret == devSecret || len(c.Auth.JWTSecret) < 32) {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters in production"))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("auth.jwt_ttl must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost %d out of range 4-31", c.Auth.BcryptCost))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Security.RateLimitRequests < 0 {
		errs = append(errs, errors.New("security.rate_limit_requests must not be negative"))
	}

	return errors.Join(errs...)
}
