package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/OskarKrafft/eulangcheck/internal/config"
	"github.com/OskarKrafft/eulangcheck/internal/etranslation"
	"github.com/OskarKrafft/eulangcheck/internal/httpapi"
	"github.com/OskarKrafft/eulangcheck/internal/jobs"
	"github.com/OskarKrafft/eulangcheck/internal/service"
	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	log.InitLogger(log.ParseLevel(cfg.Server.LogLevel))

	client, err := etranslation.NewClient(&etranslation.Config{
		ApplicationName: cfg.Provider.ApplicationName,
		Email:           cfg.Provider.Email,
		APIPassword:     cfg.Provider.APIPassword,
		RESTURL:         cfg.Provider.RESTURL,
		Timeout:         time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal("Failed to create provider client: %v", err)
	}

	store := jobs.NewStore()
	svc := service.New(*cfg, store, client)

	runner := cron.New()
	if err := svc.ScheduleSweep(runner); err != nil {
		log.Fatal("Failed to schedule sweep: %v", err)
	}
	runner.Start()
	defer runner.Stop()

	server := httpapi.NewServer(svc)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", addr)
		if !svc.CallbackReachable() {
			log.Warn("PRODUCTION_URL is not set; callbacks will target the inbound request host")
		}
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: %v", err)
		}
	case sig := <-stop:
		log.Info("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Shutdown error: %v", err)
		}
	}
}
