package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	"github.com/mliu/tubebrief/internal/infra/audiostore"
	"github.com/mliu/tubebrief/internal/infra/captions"
	"github.com/mliu/tubebrief/internal/infra/config"
	"github.com/mliu/tubebrief/internal/infra/embedder"
	"github.com/mliu/tubebrief/internal/infra/llm/chatgpt"
	"github.com/mliu/tubebrief/internal/infra/summarycache"
	"github.com/mliu/tubebrief/internal/infra/transcriptrepo"
)

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideSummaryConfig(cfg *config.Config) (summary.Config, error) {
	profiles, err := cfg.BudgetProfiles()
	if err != nil {
		return summary.Config{}, err
	}
	return summary.Config{
		Model:         cfg.LLM.Model,
		TitleModel:    cfg.LLM.TitleModel,
		Temperature:   cfg.LLM.Temperature,
		ChunkTokens:   cfg.Summary.ChunkTokens,
		MaxConcurrent: cfg.Summary.MaxConcurrent,
		Profiles:      profiles,
	}, nil
}

func provideTranscriptConfig(cfg *config.Config) transcript.Config {
	return transcript.Config{
		WhisperModel:   cfg.LLM.WhisperModel,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}
}

func provideCaptionFetcher(cfg *config.Config) transcript.CaptionFetcher {
	return captions.NewYouTubeFetcher(cfg.Captions.BaseURL)
}

func provideRepository(cfg *config.Config, logger *slog.Logger) transcript.Repository {
	fallback := transcriptrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres repository enabled")
	return transcriptrepo.NewPostgresRepository(pool)
}

func provideSummaryCache(cfg *config.Config, logger *slog.Logger) transcript.SummaryCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey summary cache enabled", "addr", cfg.Cache.Addr)
			return summarycache.NewValkeyCache(client, cfg.Cache.Prefix, cfg.Cache.TTL)
		}
	}
	return summarycache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

func provideAudioStore(cfg *config.Config, logger *slog.Logger) transcript.AudioStore {
	if cfg.Storage.Enabled {
		store, err := audiostore.NewMinioStore(
			cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
			cfg.Storage.Bucket, cfg.Storage.Region, logger)
		if err != nil {
			logger.Error("failed to initialize object storage, falling back to memory store", "error", err)
			return audiostore.NewMemoryStore()
		}
		logger.Info("object storage enabled", "bucket", cfg.Storage.Bucket)
		return store
	}
	return audiostore.NewMemoryStore()
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client) transcript.Embedder {
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel)
}

func provideMaxUploadBytes(cfg *config.Config) int64 {
	return cfg.Upload.MaxBytes
}
