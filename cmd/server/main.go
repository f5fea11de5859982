package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/neelgujarathi/ZoomProject/internal/logging"
	"github.com/neelgujarathi/ZoomProject/internal/server"
	"github.com/neelgujarathi/ZoomProject/internal/signaling"
)

func main() {
	logging.Init()

	cfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	hub := signaling.NewHub()
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(cfg, hub).Router(),
	}

	go func() {
		slog.Info("starting signaling server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
}
