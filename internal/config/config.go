// Package config loads the front office settings from the environment, an
// optional barberdesk.yaml and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreToken  = "token"

	minTokenSecretLength = 32
)

type Config struct {
	Addr         string        `mapstructure:"CLIENT_ADDR"`
	APIBaseURL   string        `mapstructure:"API_BASE_URL"`
	APITimeout   time.Duration `mapstructure:"API_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	Env          string        `mapstructure:"ENV"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	LogFormat    string        `mapstructure:"LOG_FORMAT"`
	TimeZone     string        `mapstructure:"TIME_ZONE"`

	SessionStore  string        `mapstructure:"SESSION_STORE"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	AuthRequired  bool          `mapstructure:"AUTH_REQUIRED"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LoginRatePerMin int  `mapstructure:"LOGIN_RATE_PER_MIN"`
	TrustProxy      bool `mapstructure:"TRUST_PROXY"`
}

var keys = []string{
	"CLIENT_ADDR", "API_BASE_URL", "API_TIMEOUT", "READ_TIMEOUT", "WRITE_TIMEOUT",
	"ENV", "LOG_LEVEL", "LOG_FORMAT", "TIME_ZONE",
	"SESSION_STORE", "SESSION_SECRET", "SESSION_TTL", "AUTH_REQUIRED",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOGIN_RATE_PER_MIN", "TRUST_PROXY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CLIENT_ADDR", ":3000")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", 8*time.Second)
	v.SetDefault("READ_TIMEOUT", 5*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("TIME_ZONE", "Europe/Madrid")
	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("AUTH_REQUIRED", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_RATE_PER_MIN", 20)
	v.SetDefault("TRUST_PROXY", false)
}

// Load reads barberdesk.yaml from the working directory or ./config when
// present, then lets environment variables override it.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("barberdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadFile is Load with an explicit config file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("CLIENT_ADDR is required")
	}
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis session store")
		}
	case StoreToken:
		if len(c.SessionSecret) < minTokenSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters for the token session store", minTokenSecretLength)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.LoginRatePerMin <= 0 {
		return errors.New("LOGIN_RATE_PER_MIN must be positive")
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
		}
	}
	return nil
}

// Location resolves TIME_ZONE. An empty zone means the process zone;
// Validate has already rejected unknown names.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
