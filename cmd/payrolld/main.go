package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"payrollsuite/internal/app/server"
	"payrollsuite/internal/platform/config"
	"payrollsuite/internal/platform/db"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := rootCmd().Execute(); err != nil {
		slog.Error("payrolld failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "payrolld",
		Short:         "Multi-tenant payroll service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	})

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}
	migrate.Flags().Bool("seed", false, "also create the seed tenant")
	root.AddCommand(migrate)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, config.Load())
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied", "dir", cfg.MigrationsDir)

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("seed applied", "tenant", cfg.SeedTenantName)
	}
	return nil
}
