// WorldForge Server - AI world-generation orchestration engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/worldforge/worldforge/internal/application/scheduler"
	"github.com/worldforge/worldforge/internal/application/worldflow"
	"github.com/worldforge/worldforge/internal/config"
	"github.com/worldforge/worldforge/internal/infrastructure/api/worldapi"
	"github.com/worldforge/worldforge/internal/infrastructure/cache"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
	"github.com/worldforge/worldforge/internal/infrastructure/registry"
	"github.com/worldforge/worldforge/internal/infrastructure/storage"
	"github.com/worldforge/worldforge/pkg/imagegen"
	"github.com/worldforge/worldforge/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)
	appLogger.Info("starting worldforge server", "port", cfg.Server.Port)

	p, err := pool.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to build resource pool", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	worldflow.RegisterSchemas(p.Schemas)

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Warn("redis unavailable, registry falls back to direct resolution", "error", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	resolver := registry.New(cfg.Registry.ConsulHost, cfg.Registry.ConsulPort, cfg.Registry.CacheTTL, redisCache, appLogger)
	gatewayClients := gateway.NewClients(p, resolver, appLogger)

	llmProvider, err := llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL, p.HTTP)
	if err != nil {
		appLogger.Error("failed to build llm provider", "error", err)
		os.Exit(1)
	}
	llmClient := llm.New(llmProvider, p, p.Schemas, appLogger, cfg.LLM.DefaultModel)

	imageProvider, err := imagegen.NewRunwareProvider(cfg.Image.APIKey, "", p.HTTP)
	if err != nil {
		appLogger.Error("failed to build image provider", "error", err)
		os.Exit(1)
	}

	taskRepo := storage.NewTaskRepository(p.DB)
	ledgerRepo := storage.NewLedgerRepository(p.DB)
	worldRepo := storage.NewWorldParametersRepository(p.DB)
	auditRepo := storage.NewAuditRepository(p.DB)
	journalRepo := storage.NewJournalRepository(p.DB)

	imageClient := imagegen.New(imageProvider, llmClient, gatewayClients.Media, ledgerRepo, auditRepo, p, appLogger, "")

	hub := worldapi.NewHub(appLogger)

	rc := &worldflow.RunContext{
		Tasks:    taskRepo,
		Ledger:   ledgerRepo,
		World:    worldRepo,
		Audit:    auditRepo,
		Gateway:  gatewayClients,
		LLM:      llmClient,
		ImageGen: imageClient,
		Log:            appLogger,
		Schemas:        p.Schemas,
		CompletionRule: cfg.Workflow.CompletionRule,
	}

	runner := worldflow.NewRunner(rc, journalRepo, hub, appLogger, cfg.Workflow.MaxActivitiesPerWorker)
	worldflow.RegisterWorkflows(runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper := scheduler.NewStuckTaskReaper(taskRepo, appLogger, cfg.Workflow.StuckTaskTimeout, cfg.Workflow.StuckTaskSweepInterval)
	if err := reaper.Start(ctx); err != nil {
		appLogger.Error("failed to start stuck task reaper", "error", err)
		os.Exit(1)
	}
	defer reaper.Stop()

	poller := scheduler.NewPendingTaskPoller(taskRepo, runner, appLogger, cfg.Workflow.PendingPollBatchSize, cfg.Workflow.PendingPollInterval)
	if err := poller.Start(ctx); err != nil {
		appLogger.Error("failed to start pending task poller", "error", err)
		os.Exit(1)
	}
	defer poller.Stop()

	httpServer := worldapi.New(cfg.Server, worldapi.Deps{
		Pool:   p,
		World:  worldRepo,
		Ledger: ledgerRepo,
		Tasks:  taskRepo,
		Hub:    hub,
	}, appLogger)

	if err := httpServer.Start(); err != nil {
		appLogger.Error("failed to start operator http server", "error", err)
		os.Exit(1)
	}
	appLogger.Info("operator http server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	appLogger.Info("shutdown initiated")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("operator http server shutdown failed", "error", err)
	}

	runner.Wait()
	appLogger.Info("server stopped")
}
