package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bloomforge/internal/config"
	"bloomforge/internal/database"
	"bloomforge/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the question bank schema",
		SilenceUsage: true,
	}
	root.AddCommand(upCmd(), downCmd(), versionCmd())
	return root
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m database.Migrator, l *zap.Logger) error {
				if err := m.Up(); err != nil {
					return err
				}
				l.Info("Migrations applied")
				return nil
			})
		},
	}
}

func downCmd() *cobra.Command {
	var (
		steps int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && steps <= 0 {
				return errors.New("--steps must be positive, or pass --all")
			}
			if all {
				steps = 0
			}
			return withMigrator(cmd.Context(), func(m database.Migrator, l *zap.Logger) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				l.Info("Migrations rolled back", zap.Int("steps", steps), zap.Bool("all", all))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "Roll back every migration")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m database.Migrator, _ *zap.Logger) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	}
}

func withMigrator(ctx context.Context, fn func(database.Migrator, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.Connect(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db.DB, cfg.DB.Driver, l)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m, l)
}
