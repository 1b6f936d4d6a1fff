package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/config"
	dbRedis "github.com/trendhive/productsearch/internal/db/redis"
	logpkg "github.com/trendhive/productsearch/internal/logger"
	"github.com/trendhive/productsearch/internal/metrics"
	catalogrepo "github.com/trendhive/productsearch/internal/repository/catalog"
	openaiEnc "github.com/trendhive/productsearch/internal/transport/openai"
	ingestuc "github.com/trendhive/productsearch/internal/usecase/ingest"
	"github.com/trendhive/productsearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "indexer",
		Usage:   "Load a product dataset into the search index",
		Version: version.String(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Provision the index and ingest the dataset",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "env",
						Aliases: []string{"e"},
						Usage:   "Configuration environment (local, docker, prod)",
						Value:   "local",
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the product dataset JSON (overrides config)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products per write batch (overrides config)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	env := c.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	datasetPath := cfg.Ingestion.DatasetPath
	if c.String("data") != "" {
		datasetPath = c.String("data")
	}
	if datasetPath == "" {
		return fmt.Errorf("dataset path is required, set ingestion.dataset_path or --data")
	}

	batchSize := cfg.Ingestion.BatchSize
	if c.Int("batch-size") > 0 {
		batchSize = c.Int("batch-size")
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create search store: %w", err)
	}
	defer store.Close()

	ctx := c.Context
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("search store not ready: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	encoder := openaiEnc.NewEncoder(&openaiEnc.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	repo := catalogrepo.New(store, encoder, catalogrepo.Config{
		Collection:   cfg.Collection.Name,
		KeywordField: cfg.Collection.KeywordField,
		HNSW: catalogrepo.HNSWConfig{
			M:           cfg.Collection.HNSWM,
			EFConstruct: cfg.Collection.HNSWEFConstruct,
		},
		EncodeTimeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		WriteTimeout:  time.Duration(cfg.Database.RequestTimeout) * time.Second,
	}, logger)

	if err := repo.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("provision product index: %w", err)
	}
	if err := repo.EnsureKeywordIndex(ctx); err != nil {
		logger.Warn("Failed to provision keyword index", zap.Error(err))
	}

	records, err := ingestuc.ReadRecordsFile(datasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("Dataset loaded",
		zap.String("path", datasetPath),
		zap.Int("records", len(records)))

	report, err := ingestuc.New(repo, batchSize, logger).Run(ctx, records)
	if err != nil {
		return fmt.Errorf("ingestion aborted after %d indexed: %w", report.Indexed, err)
	}

	logger.Info("Indexing complete",
		zap.Int("total", report.Total),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped_invalid", report.SkippedInvalid),
		zap.Int("skipped_encoding", report.SkippedEncoding))

	return nil
}
