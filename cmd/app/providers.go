package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
	"github.com/yanqian/outfit-calendar/internal/infra/backend"
	"github.com/yanqian/outfit-calendar/internal/infra/config"
	"github.com/yanqian/outfit-calendar/internal/infra/summarystore"
)

func provideOutfitConfig(cfg *config.Config) outfit.Config {
	return outfit.Config{
		SummaryCacheTTL: cfg.SummaryCache.TTL,
		SessionIdleTTL:  cfg.Sessions.IdleTTL,
	}
}

func provideBackendClient(cfg *config.Config, logger *slog.Logger) *backend.Client {
	return backend.NewClient(backend.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
		Burst:             cfg.Backend.Burst,
	}, logger)
}

func provideSummaryCache(cfg *config.Config, logger *slog.Logger) outfit.SummaryCache {
	if cfg.SummaryCache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return summarystore.NewMemoryStore(cfg.SummaryCache.MaxEntries)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return summarystore.NewMemoryStore(cfg.SummaryCache.MaxEntries)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("summary valkey cache enabled", "addr", cfg.SummaryCache.Addr)
			return summarystore.NewValkeyStore(client, cfg.SummaryCache.Prefix)
		}
	}
	return summarystore.NewMemoryStore(cfg.SummaryCache.MaxEntries)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.SummaryCache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.SummaryCache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.SummaryCache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
