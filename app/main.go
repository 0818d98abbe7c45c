package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedloom/feedloom/app/api"
	"github.com/feedloom/feedloom/app/cfg"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/sitecfg"
	"github.com/feedloom/feedloom/app/sites"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(config.Debug)

	slog.Info("Starting Feedloom", "version", config.Version)

	store, err := sitecfg.Open(config.SiteConfigDB)
	if err != nil {
		slog.Error("Failed to open site config store", "path", config.SiteConfigDB, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := fetch.NewClient(config.UserAgent, time.Duration(config.FetchTimeout)*time.Second)

	registry := sites.NewRegistry(config.RegistryFile, client, store)
	if err := registry.Run(); err != nil {
		slog.Error("Failed to load site registry", "file", config.RegistryFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Site registry loaded", "sites", registry.Count())

	apiHandler := api.NewHandler(registry, config.BaseUrl, config.Version)
	server := api.NewServer(apiHandler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
