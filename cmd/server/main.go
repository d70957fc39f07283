package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"mindgate-core/internal/adapter/api"
	"mindgate-core/internal/adapter/client"
	"mindgate-core/internal/adapter/store"
	"mindgate-core/internal/config"
	"mindgate-core/internal/domain/repository"
	"mindgate-core/internal/observe"
	"mindgate-core/internal/usecase"
)

const embeddingDim = 768

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	ctx := context.Background()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Cache tiers, fast to slow: memory, Redis (shared across devices),
	// SQLite (offline copy).
	tiers := []repository.CacheTier{store.NewMemoryCache(cfg.Cache.SweepInterval)}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		tiers = append(tiers, store.NewRedisCache(rdb, cfg.Cache.KeyPrefix))
	} else {
		logger.Warn("REDIS_ADDR not set, remote cache tier and token budget disabled")
	}

	sqliteTier, err := store.NewSQLiteCache(cfg.SQLitePath)
	if err != nil {
		logger.Warn("on-device cache tier disabled", zap.Error(err))
	} else {
		defer sqliteTier.Close()
		tiers = append(tiers, sqliteTier)
		go func() {
			ticker := time.NewTicker(cfg.Cache.SweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				if err := sqliteTier.Purge(context.Background()); err != nil {
					logger.Warn("sqlite purge failed", zap.Error(err))
				}
			}
		}()
	}

	cache := store.NewTieredCache(logger, tiers...)

	var limiter repository.TokenLimiter
	if rdb != nil {
		limiter = store.NewRedisLimiter(rdb, cfg.DailyTokenBudget)
	}

	// LLM path. Missing project config is not fatal: the pipeline keeps
	// running heuristic-only.
	var provider repository.AIProvider
	var embedder repository.Embedder
	var similarity repository.SimilarityIndex
	if cfg.Provider.Enabled() {
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			Project:  cfg.Provider.Project,
			Location: cfg.Provider.Location,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			logger.Error("genai client init failed, running heuristic-only", zap.Error(err))
		} else {
			primary := client.NewGeminiClientFromClient(genaiClient, cfg.Provider.PrimaryModel)
			fallback := client.NewGeminiClientFromClient(genaiClient, cfg.Provider.FallbackModel)
			provider = usecase.NewResilientProvider(primary, fallback, cfg.Provider.AttemptTimeouts)
			embedder = client.NewEmbedderFromClient(genaiClient, cfg.Provider.EmbeddingModel)

			if cfg.QdrantHost != "" {
				qClient, err := qdrant.NewClient(&qdrant.Config{
					Host: cfg.QdrantHost,
					Port: cfg.QdrantPort,
				})
				if err != nil {
					logger.Warn("qdrant unavailable, similarity gating disabled", zap.Error(err))
				} else {
					index := store.NewQdrantSimilarity(qClient, cfg.QdrantCollection, cfg.SimilarityThreshold, logger)
					if err := index.InitCollection(ctx, embeddingDim); err != nil {
						logger.Warn("qdrant collection init failed, similarity gating disabled", zap.Error(err))
					} else {
						similarity = index
					}
				}
			}
		}
	} else {
		logger.Warn("GOOGLE_CLOUD_PROJECT not set, LLM path disabled")
	}

	pipeline := usecase.NewPipeline(cfg, usecase.PipelineDeps{
		Cache:      cache,
		Limiter:    limiter,
		Provider:   provider,
		Embedder:   embedder,
		Similarity: similarity,
		Collector:  observe.NewZapCollector(logger),
	})

	// Pre-warm the model path so the first real request doesn't pay the
	// cold-start cost.
	if provider != nil {
		go func() {
			warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if embedder != nil {
				if _, err := embedder.Embed(warmCtx, "warmup"); err != nil {
					logger.Warn("embedder warm-up failed", zap.Error(err))
				}
			}
			if _, err := provider.Generate(warmCtx, "."); err != nil {
				logger.Warn("model warm-up failed", zap.Error(err))
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName: "Mindgate AI Pipeline",
	})
	handler := api.NewAnalysisHandler(pipeline, cache.Stats)
	api.SetupRouter(app, handler)

	logger.Info("mindgate pipeline listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
