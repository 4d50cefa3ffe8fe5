package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDevDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "unsecure" || cfg.Addr != ":8080" || cfg.LogFormat != "console" {
		t.Errorf("dev defaults not applied: %+v", cfg)
	}
	if cfg.PostsPerPage != 10 || cfg.IndexCacheTTL != 20*time.Second {
		t.Errorf("PostsPerPage=%d IndexCacheTTL=%v", cfg.PostsPerPage, cfg.IndexCacheTTL)
	}
	if cfg.CacheBackend != "memory" || cfg.EventsBroker != "none" {
		t.Errorf("backends = %q %q", cfg.CacheBackend, cfg.EventsBroker)
	}
}

func TestLoadProRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "pro")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "pro")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("EVENTS_BROKER", "KAFKA")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("INDEX_CACHE_TTL", "bogus")
	t.Setenv("ENABLE_SIGNUP", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EventsBroker != "kafka" {
		t.Errorf("EventsBroker = %q", cfg.EventsBroker)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"a:9092", "b:9092"}) {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.IndexCacheTTL != 20*time.Second {
		t.Errorf("bad duration should fall back, got %v", cfg.IndexCacheTTL)
	}
	if !cfg.EnableSignup || cfg.LogFormat != "json" || cfg.Addr != "" {
		t.Errorf("unexpected %+v", cfg)
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	for key, val := range map[string]string{
		"ENV":            "staging",
		"CACHE_BACKEND":  "redis",
		"EVENTS_BROKER":  "rabbit",
		"POSTS_PER_PAGE": "0",
	} {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("ENV", "dev")
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s: expected error", key, val)
			}
		})
	}
}
