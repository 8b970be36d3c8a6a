package config

import (
	"errors"
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	GuardPresence = "presence"
	GuardSigned   = "signed"
)

type Config struct {
	Env          string          `yaml:"env" env:"ENV" env-default:"local"`
	ListenConfig ListenConfig    `yaml:"listen"`
	GRPCConfig   GRPCConfig      `yaml:"grpc"`
	Backend      BackendConfig   `yaml:"backend"`
	Redis        StorageRedis    `yaml:"redis"`
	Session      SessionConfig   `yaml:"session"`
	Guard        GuardConfig     `yaml:"guard"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type ListenConfig struct {
	Port         int           `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
	BindIP       string        `yaml:"bind_ip" env:"HTTP_BIND_IP" env-default:"0.0.0.0"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

type GRPCConfig struct {
	Port int `yaml:"port" env:"GRPC_PORT" env-default:"3001"`
}

type BackendConfig struct {
	URL     string        `yaml:"url" env:"BACKEND_URL"`
	Timeout time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"10s"`
}

type StorageRedis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Username    string        `yaml:"username" env:"REDIS_USERNAME"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxAttempts int           `yaml:"max_attempts" env-default:"5"`
	RetryDelay  time.Duration `yaml:"retry_delay" env-default:"1s"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env-default:"gg_session"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"240h"`
	Secure     bool          `yaml:"secure" env:"SESSION_SECURE" env-default:"false"`
}

type GuardConfig struct {
	Mode       string `yaml:"mode" env:"GUARD_MODE" env-default:"presence"`
	RefreshKey string `yaml:"refresh_key" env:"REFRESH_KEY"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"5"`
	// TrustedProxies may set X-Forwarded-For. Addresses or CIDR ranges.
	TrustedProxies []string `yaml:"trusted_proxies" env:"RATE_LIMIT_TRUSTED_PROXIES" env-separator:","`
}

const (
	flagConfigPath = "config"
	envConfigPath  = "CONFIG_PATH"
)

var instance *Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		var configPath string
		flag.StringVar(&configPath, flagConfigPath, "", "config file path")
		flag.Parse()

		if path, ok := os.LookupEnv(envConfigPath); ok {
			configPath = path
		}

		cfg, err := Load(configPath)
		if err != nil {
			if desc, errDesc := cleanenv.GetDescription(&Config{}, nil); errDesc == nil {
				slog.Info(desc)
			}
			slog.Error("failed to load config",
				slog.String("error", err.Error()),
				slog.String("path", configPath),
				slog.String("hint", "BACKEND_URL is required, REFRESH_KEY too when GUARD_MODE=signed"))
			os.Exit(1)
		}
		instance = cfg
	})
	return instance
}

// Load reads the yaml file at path when one is given, then applies env
// overrides and checks the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.Guard.RefreshKey = strings.TrimSpace(cfg.Guard.RefreshKey)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Backend.URL == "" {
		return errors.New("BACKEND_URL is required")
	}
	switch cfg.Guard.Mode {
	case GuardPresence:
	case GuardSigned:
		if cfg.Guard.RefreshKey == "" {
			return errors.New("REFRESH_KEY is required when GUARD_MODE is signed")
		}
	default:
		return fmt.Errorf("unknown GUARD_MODE %q", cfg.Guard.Mode)
	}
	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	return nil
}
