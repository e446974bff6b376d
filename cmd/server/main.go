package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/relgraph/internal/api"
	"github.com/Harshitk-cp/relgraph/internal/buildconfig"
	"github.com/Harshitk-cp/relgraph/internal/config"
	"github.com/Harshitk-cp/relgraph/internal/logging"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"github.com/Harshitk-cp/relgraph/internal/service"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Config decides the final level and file, so errors before that go to a
	// stdout-only logger.
	bootstrap, _ := logging.New(logging.Options{Level: "info"})
	if err := config.Load(); err != nil {
		bootstrap.Fatal("failed to load config", zap.Error(err))
	}

	logger, _ := logging.New(logging.Options{Level: config.LogLevel(), File: config.LogFile()})
	defer func() { _ = logger.Sync() }()

	logger.Info("starting relgraph",
		zap.String("version", buildconfig.Version()),
		zap.String("commit", buildconfig.Commit()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, store.BackendOptions{
		Kind:        config.GraphStore(),
		DatabaseURL: config.DatabaseURL(),
		BadgerDir:   config.BadgerDir(),
		Migrate:     true,
	}, logger)
	if err != nil {
		logger.Fatal("failed to open graph store", zap.String("backend", config.GraphStore()), zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close graph store", zap.Error(err))
		}
	}()
	logger.Info("graph store ready", zap.String("backend", config.GraphStore()))

	vocab := relation.DefaultVocabulary()
	if path := config.VocabularyFile(); path != "" {
		n, err := relation.LoadOverlay(path, vocab)
		if err != nil {
			logger.Fatal("failed to load relation vocabulary", zap.String("path", path), zap.Error(err))
		}
		logger.Info("relation vocabulary overlay loaded", zap.String("path", path), zap.Int("keywords", n))
	}

	ks := service.NewKnowledgeService(st, service.Options{
		MaxHops:        config.MaxInferenceHops(),
		FoldDiacritics: config.FoldDiacritics(),
		Vocabulary:     vocab,
	}, logger.Named("knowledge"))

	app := api.NewApp(ctx, st, ks, logger)

	// Start background services
	auditEnabled := config.AuditInterval() > 0
	if auditEnabled {
		app.Auditor.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	if auditEnabled {
		app.Auditor.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
