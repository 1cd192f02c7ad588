package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-meal-api/config"
	"hospital-meal-api/events"
	"hospital-meal-api/handlers"
	"hospital-meal-api/metrics"
	"hospital-meal-api/middleware"
	"hospital-meal-api/routes"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hospital-meal-api",
		Short: "Hospital meal ordering API",
		Long: `Point-of-sale backend for hospital meal ordering.

Patients, visitors and doctors order from the catering menu; the cashier,
kitchen and waiters move orders through preparation and delivery.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := config.OpenDB(cfg.Database.Path)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Printf("database %s is up to date\n", cfg.Database.Path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hospital-meal-api version %s\n", routes.Version)
		},
	})
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)
	logger.Info("starting", "config", cfg.String())

	// Initialize database
	db, err := config.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
		logger.Info("publishing order events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", "error", err)
		}
	}()

	m := metrics.New()
	svc := services.New(services.Deps{
		DB:       db,
		Logger:   logger,
		Metrics:  m,
		Events:   publisher,
		Location: cfg.Location(),
		AutoRole: cfg.Auth.AutoRole,
	})
	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, svc.Accounts)
	h := handlers.New(svc, auth, logger, handlers.Options{
		Location:          cfg.Location(),
		ExposeResetTokens: cfg.Server.GinMode != gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.NewEngine(h, auth, m, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", "http://localhost:"+cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
