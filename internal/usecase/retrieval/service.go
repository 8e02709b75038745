// Package retrieval embeds a question once and gathers multimodal evidence
// from the vector index.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// Evidence is the outcome of one retrieval pass: text and table hits ranked
// by content similarity, image hits ranked by caption similarity.
type Evidence struct {
	Texts  []domain.RetrievedRecord
	Images []domain.RetrievedRecord
}

// Empty reports whether retrieval produced no usable evidence at all.
func (e *Evidence) Empty() bool {
	return len(e.Texts) == 0 && len(e.Images) == 0
}

// Service retrieves evidence for questions.
type Service struct {
	repo      Repository
	embed     Embedder
	textTopK  int
	imageTopK int
}

// New creates a retrieval service with default result counts per modality.
func New(repo Repository, embed Embedder, textTopK, imageTopK int) *Service {
	return &Service{
		repo:      repo,
		embed:     embed,
		textTopK:  textTopK,
		imageTopK: imageTopK,
	}
}

// Retrieve embeds the question once and runs the two filtered similarity
// queries against it. textK and imageK override the configured counts when
// positive.
func (s *Service) Retrieve(ctx context.Context, question string, textK, imageK int) (Evidence, error) {
	if strings.TrimSpace(question) == "" {
		return Evidence{}, fmt.Errorf("empty question: %w", domain.ErrBadQuery)
	}

	if textK <= 0 {
		textK = s.textTopK
	}
	if imageK <= 0 {
		imageK = s.imageTopK
	}

	embResult, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Evidence{}, fmt.Errorf("vectorize question: %w", err)
	}

	texts, err := s.repo.SearchText(ctx, embResult.Embedding, textK)
	if err != nil {
		return Evidence{}, fmt.Errorf("search text: %w", err)
	}

	images, err := s.repo.SearchImages(ctx, embResult.Embedding, imageK)
	if err != nil {
		return Evidence{}, fmt.Errorf("search images: %w", err)
	}

	return Evidence{Texts: texts, Images: images}, nil
}
