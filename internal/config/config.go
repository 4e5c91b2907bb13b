// Package config loads the storefront server configuration from an optional
// YAML file and STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/storefront/pkg/logging"
)

// Environment variables that override file values.
const (
	EnvCatalogURL = "STOREFRONT_CATALOG_URL"
	EnvUserAgent  = "STOREFRONT_USER_AGENT"
	EnvTimeout    = "STOREFRONT_CATALOG_TIMEOUT"
	EnvRedisAddr  = "STOREFRONT_REDIS_ADDR"
	EnvCartTTL    = "STOREFRONT_CART_TTL"
	EnvPort       = "STOREFRONT_PORT"
	EnvPageSize   = "STOREFRONT_PAGE_SIZE"
	EnvLogLevel   = "STOREFRONT_LOG_LEVEL"
	EnvLogPretty  = "STOREFRONT_LOG_PRETTY"
)

// Config is the complete server configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog"`
	Redis      RedisConfig      `yaml:"redis"`
	Server     ServerConfig     `yaml:"server"`
	Pagination PaginationConfig `yaml:"pagination"`
	Log        LogConfig        `yaml:"log"`
}

// CatalogConfig describes the remote product catalog.
type CatalogConfig struct {
	BaseURL   string        `yaml:"baseURL" validate:"required,url,startswith=http"`
	UserAgent string        `yaml:"userAgent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
}

// RedisConfig enables the page cache and cart persistence when Addr is set.
type RedisConfig struct {
	Addr    string        `yaml:"addr" validate:"omitempty,hostname_port"`
	CartTTL time.Duration `yaml:"cartTTL" validate:"gte=0"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

type PaginationConfig struct {
	PageSize int `yaml:"pageSize" validate:"min=1,max=100"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `yaml:"pretty"`
}

// Logging converts the log section for logging.Setup.
func (l LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(l.Level)
	cfg.Pretty = l.Pretty
	return cfg
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL:   "http://localhost:3000",
			UserAgent: "storefront/0.1.0",
			Timeout:   10 * time.Second,
		},
		Redis: RedisConfig{
			CartTTL: 24 * time.Hour,
		},
		Server:     ServerConfig{Port: 8080},
		Pagination: PaginationConfig{PageSize: 20},
		Log:        LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and reports failing fields by their YAML path.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		validateInst = v
	})
	return validateInst
}

func applyEnv(cfg *Config) error {
	cfg.Catalog.BaseURL = getEnv(EnvCatalogURL, cfg.Catalog.BaseURL)
	cfg.Catalog.UserAgent = getEnv(EnvUserAgent, cfg.Catalog.UserAgent)
	cfg.Redis.Addr = getEnv(EnvRedisAddr, cfg.Redis.Addr)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)

	var err error
	if cfg.Catalog.Timeout, err = durationEnv(EnvTimeout, cfg.Catalog.Timeout); err != nil {
		return err
	}
	if cfg.Redis.CartTTL, err = durationEnv(EnvCartTTL, cfg.Redis.CartTTL); err != nil {
		return err
	}
	if cfg.Server.Port, err = intEnv(EnvPort, cfg.Server.Port); err != nil {
		return err
	}
	if cfg.Pagination.PageSize, err = intEnv(EnvPageSize, cfg.Pagination.PageSize); err != nil {
		return err
	}
	if v := os.Getenv(EnvLogPretty); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogPretty, err)
		}
		cfg.Log.Pretty = pretty
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
