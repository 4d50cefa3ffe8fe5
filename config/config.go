// Package config loads runtime settings from the environment and an
// optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

type Config struct {
	Env          string
	Addr         string
	JWTSecret    string
	EnableSignup bool

	DBDriver string
	DBURL    string

	MediaRoot     string
	MediaMaxBytes int64
	PostsPerPage  int

	CacheBackend  string
	MemcacheURL   string
	IndexCacheTTL time.Duration

	EventsBroker      string
	NATSURL           string
	NATSSubjectPrefix string
	KafkaBrokers      []string
	KafkaTopic        string

	LogLevel  string
	LogFormat string

	SiteTitle       string
	SiteDescription string
	SiteFooter      string

	AuthRateLimit float64
	WhitelistHost string
	CertCacheDir  string
}

func (c *Config) IsDev() bool {
	return c.Env == DevEnv
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", ProEnv)
	v.SetDefault("ENABLE_SIGNUP", false)
	v.SetDefault("DB_DRIVER", "sqlite")

	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_MAX_BYTES", 5<<20)
	v.SetDefault("POSTS_PER_PAGE", 10)

	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("MEMCACHE_URL", "127.0.0.1:11211")
	v.SetDefault("INDEX_CACHE_TTL", "20s")

	v.SetDefault("EVENTS_BROKER", "none")
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("NATS_SUBJECT_PREFIX", "yatube")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "yatube-events")

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SITE_TITLE", "Yatube")
	v.SetDefault("SITE_DESCRIPTION", "Posts, groups and the people you follow")

	v.SetDefault("AUTH_RATE_LIMIT", 5)
	v.SetDefault("CERT_CACHE_DIR", "/var/www/.cache")
}

// Load reads the configuration. Environment variables win over config.yaml,
// which wins over defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:               strings.ToLower(v.GetString("ENV")),
		Addr:              v.GetString("ADDRESS_LISTEN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		EnableSignup:      v.GetBool("ENABLE_SIGNUP"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DBURL:             v.GetString("DB_URL"),
		MediaRoot:         v.GetString("MEDIA_ROOT"),
		MediaMaxBytes:     v.GetInt64("MEDIA_MAX_BYTES"),
		PostsPerPage:      v.GetInt("POSTS_PER_PAGE"),
		CacheBackend:      strings.ToLower(v.GetString("CACHE_BACKEND")),
		MemcacheURL:       v.GetString("MEMCACHE_URL"),
		IndexCacheTTL:     parseDuration(v.GetString("INDEX_CACHE_TTL"), 20*time.Second),
		EventsBroker:      strings.ToLower(v.GetString("EVENTS_BROKER")),
		NATSURL:           v.GetString("NATS_URL"),
		NATSSubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:        v.GetString("KAFKA_TOPIC"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		SiteTitle:         v.GetString("SITE_TITLE"),
		SiteDescription:   v.GetString("SITE_DESCRIPTION"),
		SiteFooter:        v.GetString("SITE_FOOTER"),
		AuthRateLimit:     v.GetFloat64("AUTH_RATE_LIMIT"),
		WhitelistHost:     v.GetString("WHITELIST_HOST"),
		CertCacheDir:      v.GetString("CERT_CACHE_DIR"),
	}

	if cfg.IsDev() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "unsecure"
		}
		if cfg.Addr == "" {
			cfg.Addr = ":8080"
		}
		if cfg.LogFormat == "" {
			cfg.LogFormat = "console"
		}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != DevEnv && c.Env != ProEnv {
		return fmt.Errorf("unknown ENV %q", c.Env)
	}
	if c.JWTSecret == "" {
		return errors.New("no secret defined: set JWT_SECRET")
	}
	switch c.CacheBackend {
	case "memory", "memcache", "none":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.EventsBroker {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("unknown EVENTS_BROKER %q", c.EventsBroker)
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	return nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
