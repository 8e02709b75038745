// Command sopqa-eval scores the pipeline against a labeled question set:
// retrieval precision@k, and answer faithfulness via an LLM judge.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/config"
	dbRedis "github.com/chanmyae99/sopqa/internal/db/redis"
	logpkg "github.com/chanmyae99/sopqa/internal/logger"
	"github.com/chanmyae99/sopqa/internal/metrics"
	indexrepo "github.com/chanmyae99/sopqa/internal/repository/index"
	openaiTransport "github.com/chanmyae99/sopqa/internal/transport/openai"
	answeruc "github.com/chanmyae99/sopqa/internal/usecase/answer"
	evaluc "github.com/chanmyae99/sopqa/internal/usecase/eval"
	retrievaluc "github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

func main() {
	_ = godotenv.Load()

	questionsPath := flag.String("questions", "evaluation/questions.json", "path to the evaluation question set")
	k := flag.Int("k", 5, "k for precision@k")
	skipFaithfulness := flag.Bool("skip-faithfulness", false, "only run retrieval evaluation")
	flag.Parse()

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

	questions, err := evaluc.LoadQuestions(*questionsPath)
	if err != nil {
		logger.Fatal("Failed to load questions", zap.Error(err))
	}

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
	retrievalSvc := retrievaluc.New(repo, provider, cfg.Retrieval.TextTopK, cfg.Retrieval.ImageTopK)
	answerSvc := answeruc.New(retrievalSvc, provider)
	svc := evaluc.New(retrievalSvc, answerSvc, provider)

	fmt.Println("==============================")
	fmt.Println(" RETRIEVAL EVALUATION")
	fmt.Println("==============================")
	scores, avg, err := svc.EvaluateRetrieval(ctx, questions, *k)
	if err != nil {
		logger.Fatal("Retrieval evaluation failed", zap.Error(err))
	}
	for _, sc := range scores {
		fmt.Printf("%s | Precision@%d = %.2f\n", sc.ID, *k, sc.Precision)
	}
	fmt.Printf("\nAverage Precision@%d: %.2f\n", *k, avg)

	if *skipFaithfulness {
		return
	}

	fmt.Println("\n==============================")
	fmt.Println(" FAITHFULNESS EVALUATION")
	fmt.Println("==============================")
	verdicts, err := svc.EvaluateFaithfulness(ctx, questions)
	if err != nil {
		logger.Fatal("Faithfulness evaluation failed", zap.Error(err))
	}
	for _, v := range verdicts {
		fmt.Printf("%s | Faithfulness: %s", v.ID, v.Grade)
		if v.Comment != "" {
			fmt.Printf(" (%s)", v.Comment)
		}
		fmt.Println()
	}
}
