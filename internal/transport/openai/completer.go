package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/metrics"
)

const opCompletion = "completion"

// Complete runs one chat completion with a system and a user message. The
// configured temperature is kept low so answers stay grounded in the
// provided evidence.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, c.completionModel, "error").Inc()
		return "", parseAPIError(opCompletion, err, domain.ErrCompletionProvider)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, c.completionModel, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionProvider)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, c.completionModel, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opCompletion, c.completionModel).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opCompletion, c.completionModel, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opCompletion, c.completionModel, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
