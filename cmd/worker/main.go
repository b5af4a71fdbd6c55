// Command worker runs one-off scraping jobs outside the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/config"
	"github.com/listly/listly-backend/internal/bootstrap"
	"github.com/listly/listly-backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "worker",
	Short:         "Listly maintenance and scraping jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
		_, err := logging.Init(env, os.Getenv("LOG_LEVEL"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd, sweepCmd, exportCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp loads config and connects to the stores the job needs.
func openApp(cmd *cobra.Command, migrate bool) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if migrate {
		cfg.Database.AutoMigrate = true
	}
	app, err := bootstrap.NewApp(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	logging.L().Debug("connected", zap.Bool("redis", app.Redis != nil))
	return app, nil
}
