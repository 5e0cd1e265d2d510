package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/bidngo-client/internal/auth"
	"github.com/example/bidngo-client/internal/config"
	"github.com/example/bidngo-client/internal/observability"
)

// ErrUnauthorized is returned on any HTTP 401. The wrapper clears no local
// state itself; callers decide whether to tear the session down.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a non-2xx response in normalized form: the message comes
// from the JSON body's error/message field when present, otherwise it is
// synthesized from the status line.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s (status %d)", e.Message, e.Status)
}

// Client is the typed façade over the BidNGo REST API. It is a plain
// constructible value meant to be built once at the composition root and
// injected wherever it is needed.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenStore
	logger  *slog.Logger
}

func New(cfg config.ClientConfig, tokens auth.TokenStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// do issues one JSON request. No retries, no caching, no deduplication
// happen at this level; endpoint methods add those only where documented.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok, err := c.tokens.Token(); err == nil && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	route := metricPath(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RequestsTotal.WithLabelValues(method, route, "transport_error").Inc()
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	status := strconv.Itoa(resp.StatusCode)
	observability.RequestsTotal.WithLabelValues(method, route, status).Inc()
	observability.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	c.logger.Debug("api_request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp.StatusCode, raw)
	}

	// An empty 2xx body is a valid response, not a decode failure.
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// metricPath collapses id- and email-bearing segments into placeholders so
// the path metric label stays bounded to the route templates.
func metricPath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segs[i] = "{id}"
			continue
		}
		if strings.Contains(s, "@") || strings.Contains(s, "%40") {
			segs[i] = "{email}"
		}
	}
	return strings.Join(segs, "/")
}

func apiErrorFrom(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return &APIError{Status: status, Message: payload.Error}
		}
		if payload.Message != "" {
			return &APIError{Status: status, Message: payload.Message}
		}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("%d %s", status, http.StatusText(status))}
}
