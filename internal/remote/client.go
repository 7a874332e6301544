// Package remote talks to the external persistence API backing the local
// cache. The contract is deliberately loose: a missing collection, a null
// body or a transport failure all read as "no remote data this round" and the
// caller keeps its local snapshot.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps the remote sync API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Config holds remote API settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient constructs a Client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: httpClient, logger: logger}
}

// FetchAll retrieves every record of one entity type. A 404 or a null body
// yields a nil slice and no error.
func FetchAll[T any](ctx context.Context, c *Client, entity string) ([]T, error) {
	var out []T
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/" + entity)
	if err != nil {
		return nil, fmt.Errorf("remote: fetch %s: %w", entity, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote: fetch %s: status %d", entity, resp.StatusCode())
	}
	return out, nil
}

// PushOne upserts a single record. The server keys records by their own ID
// field, so the whole record travels in the body.
func (c *Client) PushOne(ctx context.Context, entity string, record any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(record).
		Post("/api/" + entity)
	if err != nil {
		return fmt.Errorf("remote: push %s: %w", entity, err)
	}
	if resp.IsError() {
		return fmt.Errorf("remote: push %s: status %d", entity, resp.StatusCode())
	}
	return nil
}

// PushRaw upserts a record already serialized as JSON. The outbox worker uses
// it because task payloads carry raw records.
func (c *Client) PushRaw(ctx context.Context, entity string, record json.RawMessage) error {
	return c.PushOne(ctx, entity, record)
}

// DeleteOne removes a record remotely. A 404 is treated as already gone.
func (c *Client) DeleteOne(ctx context.Context, entity, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/" + entity + "/" + id)
	if err != nil {
		return fmt.Errorf("remote: delete %s/%s: %w", entity, id, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("remote: delete %s/%s: status %d", entity, id, resp.StatusCode())
	}
	return nil
}
