package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/bidngo-client/internal/config"
	"github.com/example/bidngo-client/internal/logging"
	"github.com/example/bidngo-client/internal/relay"
	"github.com/example/bidngo-client/internal/stream"
)

func main() {
	cfg, err := config.LoadRelayConfig()
	if err != nil {
		os.Stderr.WriteString("bidrelay: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	r := &relay.Relay{Logger: logger}

	if len(cfg.KafkaBrokers) > 0 {
		pub := relay.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		r.Pub = pub
	}

	var mirror *relay.RedisMirror
	if cfg.RedisAddr != "" {
		mirror = relay.NewRedisMirror(cfg.RedisAddr, cfg.RedisPassword)
		defer mirror.Close()
		r.Mirror = mirror
	}

	if cfg.PGDSN != "" {
		archive, err := relay.NewPostgresArchive(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres archive unavailable", "error", err)
			os.Exit(1)
		}
		defer archive.Close()
		r.Archive = archive
	}

	if r.Pub == nil && r.Mirror == nil && r.Archive == nil {
		logger.Error("no sinks configured; set KAFKA_BROKERS, REDIS_ADDR or PG_DSN")
		os.Exit(1)
	}

	// metrics and health server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(200)
			w.Write([]byte("ok"))
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, req *http.Request) {
			if mirror != nil {
				if err := mirror.Ping(req.Context()); err != nil {
					http.Error(w, "redis not ready", 503)
					return
				}
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		logger.Info("metrics/health listening", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channel := stream.NewChannel(cfg.WSURL, logger)
	defer channel.Close()
	r.Feed = channel

	logger.Info("bidrelay consuming", "ws_url", cfg.WSURL, "topic", cfg.KafkaTopic)
	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx) }()

	// the channel stops dialing after exhausting its reconnect attempts;
	// exit non-zero so the supervisor restarts us with a fresh connection
	if err := relay.MonitorFeed(ctx, channel.State, 5*time.Second); errors.Is(err, relay.ErrFeedDown) {
		logger.Error("event channel exhausted its reconnect attempts")
		os.Exit(1)
	}
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("relay stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down relay")
}
