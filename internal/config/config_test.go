package config

import (
	"testing"
	"time"
)

func TestDeriveWSURL(t *testing.T) {
	cases := []struct {
		base, want string
	}{
		{"http://api.example.com:21001", "ws://api.example.com:21003/ws"},
		{"https://api.example.com", "wss://api.example.com:21003/ws"},
		{"http://localhost:8080", "ws://localhost:21003/ws"},
	}
	for _, c := range cases {
		got, err := DeriveWSURL(c.base)
		if err != nil {
			t.Fatalf("DeriveWSURL(%q): %v", c.base, err)
		}
		if got != c.want {
			t.Fatalf("DeriveWSURL(%q) = %q, want %q", c.base, got, c.want)
		}
	}
}

func TestLoadClientConfigDefaults(t *testing.T) {
	t.Setenv("BIDNGO_BASE_URL", "")
	t.Setenv("BIDNGO_WS_URL", "")
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("default poll interval = %s", cfg.PollInterval)
	}
	if cfg.WSURL != "ws://localhost:21003/ws" {
		t.Fatalf("derived ws url = %q", cfg.WSURL)
	}
}

func TestLoadClientConfigOverrides(t *testing.T) {
	t.Setenv("BIDNGO_BASE_URL", "https://bidngo.example.com")
	t.Setenv("BIDNGO_WS_URL", "")
	t.Setenv("BIDNGO_POLL_INTERVAL", "10s")
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WSURL != "wss://bidngo.example.com:21003/ws" {
		t.Fatalf("ws url = %q", cfg.WSURL)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("poll interval = %s", cfg.PollInterval)
	}
}

func TestLoadClientConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("BIDNGO_HTTP_TIMEOUT", "soon")
	if _, err := LoadClientConfig(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadClientConfigRejectsNonPositivePollRate(t *testing.T) {
	t.Setenv("BIDNGO_POLL_RATE", "0")
	if _, err := LoadClientConfig(); err == nil {
		t.Fatal("expected error for a zero poll rate")
	}
}

func TestLoadRelayConfig(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BIDNGO_HTTP_TIMEOUT", "")
	cfg, err := LoadRelayConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "bid-events" {
		t.Fatalf("topic = %q", cfg.KafkaTopic)
	}
	if cfg.MetricsAddr != ":2112" {
		t.Fatalf("metrics addr = %q", cfg.MetricsAddr)
	}
}
