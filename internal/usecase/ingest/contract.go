package ingest

import (
	"context"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// BlobStore lists and fetches source documents and stores extracted images.
type BlobStore interface {
	List(ctx context.Context) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
	UploadImage(ctx context.Context, sourceName string, page int, fileName string, data []byte) (string, error)
}

// DocumentReader parses source documents into positioned pages.
type DocumentReader interface {
	Supported(name string) bool
	Read(name string, data []byte) ([]domain.Page, error)
	ExtractImages(data []byte, sourceName string) ([]domain.ExtractedImage, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Captioner describes an image in text.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Indexer persists index records.
type Indexer interface {
	EnsureIndex(ctx context.Context) error
	UpsertBatch(ctx context.Context, records []domain.IndexRecord) error
}
