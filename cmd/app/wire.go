//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/outfit-calendar/internal/bootstrap"
	"github.com/yanqian/outfit-calendar/internal/domain/dashboard"
	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
	"github.com/yanqian/outfit-calendar/internal/infra/backend"
	"github.com/yanqian/outfit-calendar/internal/infra/config"
	httpiface "github.com/yanqian/outfit-calendar/internal/interface/http"
	"github.com/yanqian/outfit-calendar/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOutfitConfig,
		provideBackendClient,
		provideSummaryCache,
		outfit.NewSummaryResolver,
		outfit.NewSessions,
		dashboard.NewService,
		wire.Bind(new(outfit.MonthlyRepository), new(*backend.Client)),
		wire.Bind(new(outfit.SummaryClient), new(*backend.Client)),
		wire.Bind(new(dashboard.OverviewClient), new(*backend.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
