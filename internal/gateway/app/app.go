package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"legacyshift/internal/gateway/config"
	"legacyshift/internal/gateway/handler"
	"legacyshift/internal/gateway/server"
	"legacyshift/internal/gateway/service/conversion"
	"legacyshift/internal/orchestrator"
	"legacyshift/internal/pipeline"
)

type App struct {
	server     *server.Server
	conversion *conversion.Service
	log        *zap.Logger
	closers    []func() error
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Dependencies
	models, closeModels, err := initModels(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	registry, err := pipeline.NewRegistry(models, pipeline.Options{Logger: log.Named("stage")})
	if err != nil {
		_ = closeModels()
		return nil, fmt.Errorf("failed to build stage clients: %w", err)
	}
	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		_ = closeModels()
		return nil, err
	}
	orch := orchestrator.New(registry,
		orchestrator.WithLogger(log.Named("orchestrator")),
		orchestrator.WithMaxParallel(cfg.Pipeline.MaxParallelUnits),
	)
	conversionSvc := conversion.New(orch, stores.jobs, stores.artifact, log)

	// Routing & Server
	conversorHandler := handler.NewConversorHandler(conversionSvc, cfg.Pipeline.MaxUploadBytes, log)
	mux := server.NewMux(conversorHandler, log.Named("http"))
	srv := server.New(cfg.Port, mux, log)

	return &App{
		server:     srv,
		conversion: conversionSvc,
		log:        log,
		closers:    []func() error{stores.Close, closeModels},
	}, nil
}

// Conversion exposes the job entry point for offline use.
func (a *App) Conversion() *conversion.Service { return a.conversion }

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server, then releases stores and model clients.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.Close()
	return err
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
