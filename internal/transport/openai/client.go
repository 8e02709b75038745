// Package openai adapts the OpenAI-compatible API to the domain ports for
// embedding, answer completion and image captioning.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/domain"
)

var (
	_ domain.Embedder      = (*Client)(nil)
	_ domain.HealthChecker = (*Client)(nil)
)

// Config holds the model provider settings.
type Config struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	EmbeddingDim    int
	CompletionModel string
	CaptionModel    string
	Temperature     float32
	RequestTimeout  time.Duration
	Logger          *zap.Logger
}

// Client wraps one OpenAI-compatible API connection shared by all three
// operations.
type Client struct {
	api             *openai.Client
	embeddingModel  openai.EmbeddingModel
	embeddingDim    int
	completionModel string
	captionModel    string
	temperature     float32
	requestTimeout  time.Duration
	logger          *zap.Logger
}

// New creates a provider client. CaptionModel falls back to CompletionModel
// when unset.
func New(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	captionModel := cfg.CaptionModel
	if captionModel == "" {
		captionModel = cfg.CompletionModel
	}

	return &Client{
		api:             openai.NewClientWithConfig(clientCfg),
		embeddingModel:  openai.EmbeddingModel(cfg.EmbeddingModel),
		embeddingDim:    cfg.EmbeddingDim,
		completionModel: cfg.CompletionModel,
		captionModel:    captionModel,
		temperature:     cfg.Temperature,
		requestTimeout:  cfg.RequestTimeout,
		logger:          cfg.Logger,
	}
}

// withTimeout bounds one provider call. A hung upstream must not hold a
// request open indefinitely.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response. All
// errors are wrapped with the given sentinel for correct status mapping.
func parseAPIError(op string, err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", op, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
