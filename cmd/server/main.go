// Package main is the entry point for the web admin console.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/app"
	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init console: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, a); err != nil {
		a.Log.Error("server stopped", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}
