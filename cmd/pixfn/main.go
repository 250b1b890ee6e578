// cmd/pixfn/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/interfaces/http"
	"github.com/mercado-ia/storefront/internal/pkg/logger"
)

func main() {
	cfg, err := config.LoadForFunction()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg)
	if cfg.Payment.APIKey == "" {
		logg.Warn("ABACATEPAY_API_KEY is not set; every payment request will fail")
	}

	server := http.NewFunctionServer(cfg, logg)

	go func() {
		if err := server.Start(); err != nil {
			logg.WithError(err).Fatal("Failed to start payment function")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logg.WithError(err).Error("Failed to shutdown payment function gracefully")
	}
}
