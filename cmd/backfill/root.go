package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"receptionist-dashboard/internal/config"
	"receptionist-dashboard/pkg/logger"
	"receptionist-dashboard/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "backfill",
	Short:         "Maintenance tasks for the receptionist call store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		log = logger.New(cfg.App.Env, "backfill").With("command", cmd.Name())
		slog.SetDefault(log)
		return nil
	},
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	return utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxConns: cfg.DB.MaxConns})
}

func main() {
	rootCmd.AddCommand(namesCmd, migrateCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
