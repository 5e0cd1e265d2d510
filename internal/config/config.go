package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClientConfig captures all tunable parameters for the API client and the
// live bid channel. Values are primarily loaded from environment variables
// with sane defaults so the binaries can run locally without excessive setup.
type ClientConfig struct {
	BaseURL     string
	WSURL       string
	HTTPTimeout time.Duration

	PollInterval  time.Duration
	PollRatePerS  float64
	TokenPath     string

	GeocodeEndpoint string
	DefaultSpeedMps float64

	LogLevel string
}

// RelayConfig captures the extra wiring the bid-event relay daemon needs.
type RelayConfig struct {
	ClientConfig

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr     string
	RedisPassword string

	PGDSN string

	MetricsAddr string
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:         "http://localhost:21001",
		HTTPTimeout:     10 * time.Second,
		PollInterval:    30 * time.Second,
		PollRatePerS:    1,
		TokenPath:       defaultTokenPath(),
		DefaultSpeedMps: 10,
		LogLevel:        "info",
	}
}

func LoadClientConfig() (ClientConfig, error) {
	cfg := defaultClientConfig()
	var errs []error

	setStringFromEnv(&cfg.BaseURL, "BIDNGO_BASE_URL")
	setStringFromEnv(&cfg.WSURL, "BIDNGO_WS_URL")
	setDurationFromEnv(&cfg.HTTPTimeout, "BIDNGO_HTTP_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.PollInterval, "BIDNGO_POLL_INTERVAL", &errs)
	setFloatFromEnv(&cfg.PollRatePerS, "BIDNGO_POLL_RATE", &errs)
	setStringFromEnv(&cfg.TokenPath, "BIDNGO_TOKEN_PATH")
	setStringFromEnv(&cfg.GeocodeEndpoint, "BIDNGO_GEOCODE_ENDPOINT")
	setFloatFromEnv(&cfg.DefaultSpeedMps, "BIDNGO_DEFAULT_SPEED_MPS", &errs)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.WSURL == "" {
		ws, err := DeriveWSURL(cfg.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("derive ws url: %w", err))
		} else {
			cfg.WSURL = ws
		}
	}

	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("BIDNGO_POLL_INTERVAL must be > 0"))
	}
	if cfg.PollRatePerS <= 0 {
		errs = append(errs, fmt.Errorf("BIDNGO_POLL_RATE must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func LoadRelayConfig() (RelayConfig, error) {
	client, err := LoadClientConfig()
	cfg := RelayConfig{
		ClientConfig: client,
		KafkaTopic:   "bid-events",
		MetricsAddr:  ":2112",
	}
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.PGDSN = os.Getenv("PG_DSN")

	setStringFromEnv(&cfg.MetricsAddr, "METRICS_ADDR")

	return cfg, errors.Join(errs...)
}

// DeriveWSURL maps the HTTP base URL onto the event feed address: same host,
// fixed port 21003, path /ws, ws/wss scheme following http/https.
func DeriveWSURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:21003/ws", scheme, u.Hostname()), nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bidngo-token"
	}
	return home + "/.bidngo/token"
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
