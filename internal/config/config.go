package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "STOREFRONT_"

type SlotConfig struct {
	// Driver is one of bolt, sqlite, postgres, redis or memory.
	Driver      string `yaml:"driver" env:"DRIVER"`
	Path        string `yaml:"path" env:"PATH"`
	DSN         string `yaml:"dsn" env:"DSN"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	Migrate     bool   `yaml:"migrate" env:"MIGRATE"`
}

type Config struct {
	APIBaseURL      string        `yaml:"api_base_url" env:"API_URL"`
	CountriesURL    string        `yaml:"countries_url" env:"COUNTRIES_URL"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"UPSTREAM_TIMEOUT"`

	Slot    SlotConfig `yaml:"slot" envPrefix:"SLOT_"`
	CartKey string     `yaml:"cart_key" env:"CART_KEY"`

	TaxRate      float64       `yaml:"tax_rate" env:"TAX_RATE"`
	PaymentDelay time.Duration `yaml:"payment_delay" env:"PAYMENT_DELAY"`

	HTTPAddr         string   `yaml:"http_addr" env:"HTTP_ADDR"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins" env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	MirrorRemoteCart bool          `yaml:"mirror_remote_cart" env:"MIRROR_REMOTE_CART"`
	CountriesTTL     time.Duration `yaml:"countries_ttl" env:"COUNTRIES_TTL"`
	OAuthTimeout     time.Duration `yaml:"oauth_timeout" env:"OAUTH_TIMEOUT"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Defaults match a local checkout of the grocery API.
func Defaults() Config {
	return Config{
		APIBaseURL:      "http://localhost:5000",
		CountriesURL:    "https://restcountries.com",
		UpstreamTimeout: 10 * time.Second,
		Slot: SlotConfig{
			Driver:      "bolt",
			Path:        defaultDataPath(),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "storefront:",
			Migrate:     true,
		},
		CartKey:          "groceryapp-cart",
		TaxRate:          0.08,
		PaymentDelay:     3 * time.Second,
		HTTPAddr:         ":8090",
		CORSAllowOrigins: []string{"http://localhost:5173"},
		CountriesTTL:     time.Hour,
		OAuthTimeout:     2 * time.Minute,
		LogLevel:         "info",
	}
}

// Load layers the optional YAML file at path and then STOREFRONT_* environment
// variables over Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api_base_url: %w", err))
	}
	if _, err := url.ParseRequestURI(c.CountriesURL); err != nil {
		errs = append(errs, fmt.Errorf("countries_url: %w", err))
	}
	if c.TaxRate < 0 {
		errs = append(errs, fmt.Errorf("tax_rate must not be negative"))
	}
	if c.PaymentDelay < 0 {
		errs = append(errs, fmt.Errorf("payment_delay must not be negative"))
	}
	if strings.TrimSpace(c.CartKey) == "" {
		errs = append(errs, fmt.Errorf("cart_key is required"))
	}

	switch c.Slot.Driver {
	case "bolt", "sqlite":
		if strings.TrimSpace(c.Slot.Path) == "" {
			errs = append(errs, fmt.Errorf("slot.path is required for %s", c.Slot.Driver))
		}
	case "postgres":
		if strings.TrimSpace(c.Slot.DSN) == "" {
			errs = append(errs, fmt.Errorf("slot.dsn is required for postgres"))
		}
	case "redis":
		if strings.TrimSpace(c.Slot.RedisAddr) == "" {
			errs = append(errs, fmt.Errorf("slot.redis_addr is required for redis"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown slot driver %q", c.Slot.Driver))
	}

	return errors.Join(errs...)
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "storefront.db")
}
