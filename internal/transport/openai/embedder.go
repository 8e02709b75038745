package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/metrics"
)

const opEmbedding = "embedding"

// Embed implements domain.Embedder. Returns the vector and usage with
// transport-level metrics.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.embeddingModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.embeddingDim > 0 {
		req.Dimensions = c.embeddingDim
	}

	start := time.Now()

	resp, err := c.api.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	model := string(c.embeddingModel)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(opEmbedding, err, domain.ErrEmbeddingProvider)
	}

	if len(resp.Data) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProvider)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opEmbedding, model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opEmbedding, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opEmbedding, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}
