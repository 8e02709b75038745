package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/metrics"
)

const opCaption = "caption"

// captionInstruction is the fixed prompt sent alongside each extracted image.
const captionInstruction = "Describe this image for workplace safety documentation."

// Caption produces a textual description of one image via a vision-capable
// chat model. Temperature is pinned to zero so reruns over the same document
// produce stable captions.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	mime := http.DetectContentType(image)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:       c.captionModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: captionInstruction,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opCaption, c.captionModel, "error").Inc()
		return "", parseAPIError(opCaption, err, domain.ErrCompletionProvider)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opCaption, c.captionModel, "error").Inc()
		return "", fmt.Errorf("empty caption response: %w", domain.ErrCompletionProvider)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opCaption, c.captionModel, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opCaption, c.captionModel).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opCaption, c.captionModel, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opCaption, c.captionModel, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
