package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/teamboard/internal/config"
	"github.com/mcoot/teamboard/internal/factory"
	"github.com/mcoot/teamboard/internal/seed"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample teams, challenges and accounts",
		Long: `seed replaces the configured store's teams, challenges and accounts with sample data.

It reads the same TEAMBOARD_* environment (and .env file) as the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd.Context(), envFile, func(ctx context.Context, s *seed.Seeder) error {
				res, err := s.Seed(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d teams, %d challenges, %d users created\n", res.Teams, res.Challenges, res.Users)
				printAccounts(cmd)
				return nil
			})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reset-users",
		Short: "Recreate only the sample accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd.Context(), envFile, func(ctx context.Context, s *seed.Seeder) error {
				n, err := s.ResetUsers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d users created\n", n)
				printAccounts(cmd)
				return nil
			})
		},
	})

	return rootCmd
}

func printAccounts(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Test accounts:")
	for _, u := range seed.Users {
		fmt.Fprintf(out, "  %s: %s / %s\n", u.Role, u.Email, u.Password)
	}
}

func withSeeder(ctx context.Context, envFile string, f func(context.Context, *seed.Seeder) error) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StorageType == config.StorageMemory {
		return fmt.Errorf("storage type %q does not persist; set TEAMBOARD_STORAGE_TYPE", cfg.StorageType)
	}

	fc := factory.ConfigFromEnv(cfg, logger)
	fc.RelayEnabled = false
	app, err := factory.New(ctx, fc)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return f(ctx, seed.New(app.Storage, app.AuthService, app.Clock, app.IDs, logger))
}
