package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/config"
	dbRedis "github.com/trendhive/productsearch/internal/db/redis"
	"github.com/trendhive/productsearch/internal/domain"
	logpkg "github.com/trendhive/productsearch/internal/logger"
	"github.com/trendhive/productsearch/internal/metrics"
	catalogrepo "github.com/trendhive/productsearch/internal/repository/catalog"
	searchrepo "github.com/trendhive/productsearch/internal/repository/search"
	chiTransport "github.com/trendhive/productsearch/internal/transport/chi"
	openaiEnc "github.com/trendhive/productsearch/internal/transport/openai"
	healthuc "github.com/trendhive/productsearch/internal/usecase/health"
	ingestuc "github.com/trendhive/productsearch/internal/usecase/ingest"
	searchuc "github.com/trendhive/productsearch/internal/usecase/search"
	"github.com/trendhive/productsearch/internal/version"
)

func main() {
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

	logger.Info("Starting product search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Collection.Name),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create search store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search store not ready", zap.Error(err))
	}
	logger.Info("Connected to search store")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	encoder := openaiEnc.NewEncoder(&openaiEnc.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	logger.Info("Encoder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	catalogRepo := catalogrepo.New(store, encoder, catalogrepo.Config{
		Collection:   cfg.Collection.Name,
		KeywordField: cfg.Collection.KeywordField,
		HNSW: catalogrepo.HNSWConfig{
			M:           cfg.Collection.HNSWM,
			EFConstruct: cfg.Collection.HNSWEFConstruct,
		},
		EncodeTimeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		WriteTimeout:  time.Duration(cfg.Database.RequestTimeout) * time.Second,
	}, logger)

	searchRepo := searchrepo.New(
		store, cfg.Collection.Name, cfg.Collection.KeywordField,
		time.Duration(cfg.Database.RequestTimeout)*time.Second, logger,
	)

	if err := catalogRepo.EnsureCollection(ctx); err != nil {
		logger.Fatal("Failed to provision product index", zap.Error(err))
	}
	if err := catalogRepo.EnsureKeywordIndex(ctx); err != nil {
		// Keyword search degrades to empty results, but semantic search
		// still works. Not fatal.
		logger.Warn("Failed to provision keyword index", zap.Error(err))
	}

	searchSvc := searchuc.New(searchRepo, encoder, cfg.Search.SemanticPercent,
		searchuc.WithEncodeTimeout(time.Duration(cfg.Embedding.TimeoutSec)*time.Second))
	ingestSvc := ingestuc.New(catalogRepo, cfg.Ingestion.BatchSize, logger)
	healthSvc := healthuc.New(store, store, domain.IndexName(cfg.Collection.Name))

	records := func() ([]json.RawMessage, error) {
		return ingestuc.ReadRecordsFile(cfg.Ingestion.DatasetPath)
	}

	server := chiTransport.NewServer(searchSvc, ingestSvc, healthSvc, records, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
