package shared

import (
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
	"github.com/rs/zerolog/log"

	"trip_planner/internal/validation"
)

const DefaultRecommendationBase = "https://recommendation-service-817898523355.us-central1.run.app"

// Config is read from defaults, then an optional YAML file, then env vars.
// Env names are the upper-cased koanf keys (HTTP_ADDR, REDIS_ADDR, ...).
type Config struct {
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`

	HTTPAddr    string        `koanf:"http_addr"`
	MetricsAddr string        `koanf:"metrics_addr"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	// comma separated
	CORSOrigins       string        `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	StoreDriver string `koanf:"store_driver" validate:"oneof=memory mysql"`
	MySQLDSN    string `koanf:"mysql_dsn"`

	RedisAddr   string        `koanf:"redis_addr"`
	RedisPass   string        `koanf:"redis_password"`
	RedisDB     int           `koanf:"redis_db" validate:"min=0"`
	RedisPrefix string        `koanf:"redis_prefix"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`

	RecsvcBase            string        `koanf:"recsvc_base_url" validate:"required,url"`
	RecsvcAttempts        int           `koanf:"recsvc_attempts" validate:"min=1"`
	RecsvcRPS             int           `koanf:"recsvc_rps" validate:"min=1"`
	RecsvcTimeout         time.Duration `koanf:"recsvc_timeout"`
	RecsvcBreakerFailures int           `koanf:"recsvc_breaker_failures" validate:"min=1"`
	RecsvcBreakerCooldown time.Duration `koanf:"recsvc_breaker_cooldown"`

	StatusMaxInFlight int           `koanf:"status_max_in_flight" validate:"min=1"`
	StatusTimeout     time.Duration `koanf:"status_timeout"`

	Workers int `koanf:"prefetch_workers" validate:"min=1"`
	// comma separated
	PrefetchUsers string `koanf:"prefetch_users"`
}

func defaults() Config {
	return Config{
		AppEnv:                "prod",
		LogLevel:              "info",
		HTTPAddr:              ":8080",
		MetricsAddr:           ":9100",
		HTTPTimeout:           15 * time.Second,
		RateLimitRequests:     100,
		RateLimitWindow:       time.Minute,
		StoreDriver:           "memory",
		MySQLDSN:              "root:root@tcp(localhost:3306)/trips?parseTime=true&charset=utf8mb4&loc=UTC",
		RedisPrefix:           "trip:",
		CacheTTL:              15 * time.Minute,
		RecsvcBase:            DefaultRecommendationBase,
		RecsvcAttempts:        1,
		RecsvcRPS:             5,
		RecsvcTimeout:         10 * time.Second,
		RecsvcBreakerFailures: 5,
		RecsvcBreakerCooldown: 30 * time.Second,
		StatusMaxInFlight:     16,
		StatusTimeout:         10 * time.Second,
		Workers:               8,
	}
}

func Load() (Config, error) {
	// .env is optional
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	k, err := loadKoanf()
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validation.Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.StoreDriver == "mysql" && strings.TrimSpace(c.MySQLDSN) == "" {
		return Config{}, fmt.Errorf("invalid config: mysql_dsn is required when store_driver is mysql")
	}
	return c, nil
}

func loadKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := configFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey(k)), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return k, nil
}

// envKey maps HTTP_ADDR to http_addr and drops variables that are not config
// keys (PATH, HOME, ...). The defaults layer defines every known key.
func envKey(k *koanf.Koanf) func(string) string {
	return func(name string) string {
		key := strings.ToLower(name)
		if !k.Exists(key) {
			return ""
		}
		return key
	}
}

// configFile returns CONFIG_PATH when set, else ./config.yaml when present.
func configFile() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func (c Config) CORSOriginList() []string { return splitList(c.CORSOrigins) }

func (c Config) PrefetchUserList() []string { return splitList(c.PrefetchUsers) }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
