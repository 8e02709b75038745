package retrieval

import (
	"context"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// Repository defines the index contract for retrieval.
type Repository interface {
	SearchText(ctx context.Context, vector []float32, k int) ([]domain.RetrievedRecord, error)
	SearchImages(ctx context.Context, vector []float32, k int) ([]domain.RetrievedRecord, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
