// Package ingest runs the document ingestion pipeline: list blobs, parse
// them into positioned pages, chunk and embed the text, caption extracted
// images, and upsert everything into the vector index in batches.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/logger"
	"github.com/chanmyae99/sopqa/internal/metrics"
)

// Report summarizes one ingestion run.
type Report struct {
	Files        int
	Skipped      int
	TextRecords  int
	ImageRecords int
	Batches      int
}

// Config holds ingestion pipeline settings.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// Service runs ingestion over a blob container.
type Service struct {
	blobs  BlobStore
	reader DocumentReader
	embed  Embedder
	vision Captioner
	index  Indexer
	cfg    Config
}

// New creates an ingestion service.
func New(blobs BlobStore, reader DocumentReader, embed Embedder, vision Captioner, index Indexer, cfg Config) *Service {
	return &Service{
		blobs:  blobs,
		reader: reader,
		embed:  embed,
		vision: vision,
		index:  index,
		cfg:    cfg,
	}
}

// Run ingests every supported document in the container. Unsupported formats
// are skipped and logged; any batch upload failure aborts the run so a
// partial index is never silently left behind.
func (s *Service) Run(ctx context.Context) (Report, error) {
	log := logger.FromContext(ctx)

	var report Report

	if err := s.index.EnsureIndex(ctx); err != nil {
		return report, fmt.Errorf("ensure index: %w", err)
	}

	names, err := s.blobs.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list blobs: %w", err)
	}

	var batch []domain.IndexRecord

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		start := time.Now()
		if err := s.index.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("upload batch of %d records: %v: %w", len(batch), err, domain.ErrIndexUpload)
		}
		metrics.IngestBatchDuration.Observe(time.Since(start).Seconds())

		report.Batches++
		batch = nil
		return nil
	}

	add := func(rec domain.IndexRecord) error {
		batch = append(batch, rec)
		metrics.IngestRecordsTotal.WithLabelValues(string(rec.AssetType)).Inc()
		if len(batch) >= s.cfg.BatchSize {
			return flush()
		}
		return nil
	}

	for _, name := range names {
		if !s.reader.Supported(name) {
			log.Warn("skipping unsupported file", zap.String("blob", name))
			metrics.IngestSkippedTotal.WithLabelValues("unsupported_format").Inc()
			report.Skipped++
			continue
		}

		log.Info("processing blob", zap.String("blob", name))

		data, err := s.blobs.Download(ctx, name)
		if err != nil {
			return report, fmt.Errorf("download %s: %w", name, err)
		}

		pages, err := s.reader.Read(name, data)
		if err != nil {
			if errors.Is(err, domain.ErrUnsupportedFormat) {
				log.Warn("skipping unsupported file", zap.String("blob", name))
				metrics.IngestSkippedTotal.WithLabelValues("unsupported_format").Inc()
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("read %s: %w", name, err)
		}

		if isPDF(name) {
			n, err := s.ingestImages(ctx, name, data, add)
			if err != nil {
				return report, err
			}
			report.ImageRecords += n
		}

		n, err := s.ingestPages(ctx, name, pages, add)
		if err != nil {
			return report, err
		}
		report.TextRecords += n
		report.Files++
	}

	if err := flush(); err != nil {
		return report, err
	}

	log.Info("ingestion finished",
		zap.Int("files", report.Files),
		zap.Int("skipped", report.Skipped),
		zap.Int("text_records", report.TextRecords),
		zap.Int("image_records", report.ImageRecords),
		zap.Int("batches", report.Batches),
	)

	return report, nil
}

// ingestPages chunks, embeds and records the text of one document. PDF pages
// go through the sliding window; DOCX paragraphs and XLSX rows are one chunk
// each. Chunk indices reset per page for paged content and run across the
// whole document otherwise, keeping identity keys collision-free.
func (s *Service) ingestPages(ctx context.Context, name string, pages []domain.Page, add func(domain.IndexRecord) error) (int, error) {
	records := 0
	docChunkIndex := 0

	for _, page := range pages {
		var chunks []string
		if page.Position.Kind == domain.PositionPage {
			var err error
			chunks, err = domain.Chunk(page.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
			if err != nil {
				return records, fmt.Errorf("chunk %s: %w", name, err)
			}
		} else {
			chunks = []string{page.Text}
		}

		for i, chunk := range chunks {
			chunkIndex := i
			if page.Position.Kind != domain.PositionPage {
				chunkIndex = docChunkIndex
				docChunkIndex++
			}

			embResult, err := s.embed.Embed(ctx, chunk)
			if err != nil {
				return records, fmt.Errorf("embed chunk of %s: %w", name, err)
			}

			rec := domain.NewTextRecord(name, page.Position, chunkIndex, chunk, embResult.Embedding)
			if page.Position.Kind == domain.PositionSheet {
				rec.AssetType = domain.AssetTable
			}

			if err := add(rec); err != nil {
				return records, err
			}
			records++
		}
	}

	return records, nil
}

// ingestImages captions, embeds, uploads and records every embedded image of
// one PDF.
func (s *Service) ingestImages(ctx context.Context, name string, data []byte, add func(domain.IndexRecord) error) (int, error) {
	images, err := s.reader.ExtractImages(data, name)
	if err != nil {
		return 0, fmt.Errorf("extract images from %s: %w", name, err)
	}

	records := 0
	for _, img := range images {
		caption, err := s.vision.Caption(ctx, img.Data)
		if err != nil {
			return records, fmt.Errorf("caption %s: %w", img.FileName, err)
		}

		embResult, err := s.embed.Embed(ctx, caption)
		if err != nil {
			return records, fmt.Errorf("embed caption of %s: %w", img.FileName, err)
		}

		blobPath, err := s.blobs.UploadImage(ctx, name, img.Page, img.FileName, img.Data)
		if err != nil {
			return records, fmt.Errorf("upload %s: %w", img.FileName, err)
		}

		rec := domain.NewImageRecord(name, img.FileName, img.Page, blobPath, caption, embResult.Embedding)
		if err := add(rec); err != nil {
			return records, err
		}
		records++
	}

	return records, nil
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
