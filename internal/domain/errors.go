package domain

import "errors"

var (
	// ErrUnsupportedFormat signals a source file with an unknown extension.
	// Ingestion skips such files and continues the run.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrIndexUpload signals a rejected record in an index upload batch.
	// Fatal to the ingestion run.
	ErrIndexUpload = errors.New("index upload failed")
	// ErrEmbeddingProvider signals an embedding service failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCompletionProvider signals a completion service failure.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrInvalidChunking signals an invalid chunk size/overlap combination.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
	// ErrBadQuery signals a malformed search or ask request.
	ErrBadQuery = errors.New("bad query")
)
