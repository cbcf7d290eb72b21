package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/db"
	"github.com/nijaru/yt-summary/handlers"
	"github.com/nijaru/yt-summary/logger"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/pipeline"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/transcription"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	accessLog, err := logger.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	provider, err := summary.NewProvider(cfg.Summary)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize summary provider")
	}
	if cfg.Summary.APIKey == "" {
		logrus.WithField("provider", cfg.Summary.Provider).Warn("No summarization API key configured; summaries will fail")
	}

	source := transcription.NewYouTubeSource(cfg.Transcript.BaseURL, cfg.Transcript.Languages, cfg.Transcript.Timeout)

	var (
		opts  []pipeline.Option
		runs  handlers.RunLog
		store *db.Store
	)
	if cfg.DBPath != "" {
		store, err = db.Open(cfg.DBPath)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		opts = append(opts, pipeline.WithRecorder(store))
		runs = store
	}

	p := pipeline.New(
		transcription.NewFetcher(source),
		summary.NewClient(provider),
		cfg.Summary.Prompt,
		opts...,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler(cfg.Debug),
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "yt-summary " + cfg.Version,
	})

	middleware.Setup(app, cfg, accessLog)
	handlers.NewHandler(p, runs, cfg.Debug).Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logrus.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			logrus.WithError(err).Error("Server shutdown error")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":     cfg.ServerPort,
		"provider": cfg.Summary.Provider,
		"model":    cfg.Summary.Model,
		"run_log":  cfg.DBPath != "",
	}).Info("Server starting")

	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Error("Server error")
	}

	if store != nil {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Database shutdown error")
		}
	}
}
