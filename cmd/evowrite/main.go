package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MLiu666/EvoWrite/internal/agent"
	"github.com/MLiu666/EvoWrite/internal/api"
	"github.com/MLiu666/EvoWrite/internal/config"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/logger"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/storage"
	"github.com/MLiu666/EvoWrite/internal/store"
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open store", "error", err)
	}
	defer db.Close()

	mem := memory.NewStore(db.DB())

	model, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		logger.Fatal("failed to create llm", "error", err)
	}

	tutor := agent.New(db, mem, model)

	// essay archive (optional)
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		archive, err = storage.NewArchive(cfg.Archive)
		if err != nil {
			logger.Error("failed to create archive client", "error", err)
		} else {
			initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := archive.Init(initCtx); err != nil {
				logger.Error("failed to init archive bucket", "error", err)
				archive = nil
			} else {
				logger.Info("essay archive enabled", "endpoint", cfg.Archive.Endpoint, "bucket", cfg.Archive.Bucket)
			}
			cancel()
		}
	}

	// scheduled memory decay sweep
	var sweeper *cron.Cron
	if cfg.Decay.Enabled {
		tz, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Error("invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
			tz = time.UTC
		}

		sweeper = cron.New(cron.WithLocation(tz))
		_, err = sweeper.AddFunc(cfg.Decay.Schedule, func() {
			swept, err := mem.DecaySweep()
			if err != nil {
				logger.Error("decay sweep failed", "error", err)
				return
			}
			logger.Info("decay sweep complete", "records", swept)
		})
		if err != nil {
			logger.Fatal("invalid decay schedule", "schedule", cfg.Decay.Schedule, "error", err)
		}

		sweeper.Start()
		logger.Info("decay sweep scheduled", "schedule", cfg.Decay.Schedule, "timezone", cfg.Timezone)
	}

	srv := api.NewServer(tutor, db, mem, archive)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("evowrite starting", "addr", cfg.Server.Addr, "provider", cfg.LLM.Provider)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}
