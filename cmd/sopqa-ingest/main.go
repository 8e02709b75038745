// Command sopqa-ingest runs one ingestion pass over the document container:
// parse, chunk, embed, caption and upsert into the vector index.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/config"
	dbRedis "github.com/chanmyae99/sopqa/internal/db/redis"
	logpkg "github.com/chanmyae99/sopqa/internal/logger"
	"github.com/chanmyae99/sopqa/internal/metrics"
	"github.com/chanmyae99/sopqa/internal/reader"
	indexrepo "github.com/chanmyae99/sopqa/internal/repository/index"
	"github.com/chanmyae99/sopqa/internal/storage"
	openaiTransport "github.com/chanmyae99/sopqa/internal/transport/openai"
	ingestuc "github.com/chanmyae99/sopqa/internal/usecase/ingest"
	"github.com/chanmyae99/sopqa/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sopqa ingestion",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("storage_root", cfg.Storage.Root),
		zap.Int("chunk_size", cfg.Ingest.ChunkSize),
		zap.Int("chunk_overlap", cfg.Ingest.ChunkOverlap),
		zap.Int("batch_size", cfg.Ingest.BatchSize),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.Register()

	blobs, err := storage.NewFS(cfg.Storage.Root)
	if err != nil {
		logger.Fatal("Failed to open blob storage", zap.Error(err))
	}

	provider := openaiTransport.New(&openaiTransport.Config{
		APIKey:          cfg.OpenAI.APIKey,
		BaseURL:         cfg.OpenAI.BaseURL,
		EmbeddingModel:  cfg.OpenAI.EmbeddingModel,
		EmbeddingDim:    cfg.OpenAI.EmbeddingDim,
		CompletionModel: cfg.OpenAI.CompletionModel,
		CaptionModel:    cfg.OpenAI.CaptionModel,
		Temperature:     cfg.OpenAI.Temperature,
		RequestTimeout:  time.Duration(cfg.OpenAI.RequestTimeoutSec) * time.Second,
		Logger:          logger,
	})

	repo := indexrepo.New(store, cfg.Index, cfg.OpenAI.EmbeddingDim)

	svc := ingestuc.New(blobs, reader.New(), provider, provider, repo, ingestuc.Config{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		BatchSize:    cfg.Ingest.BatchSize,
	})

	report, err := svc.Run(logpkg.ContextWithLogger(ctx, logger))
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion complete",
		zap.Int("files", report.Files),
		zap.Int("skipped", report.Skipped),
		zap.Int("text_records", report.TextRecords),
		zap.Int("image_records", report.ImageRecords),
		zap.Int("batches", report.Batches),
	)
}
