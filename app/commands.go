package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sushihentaime/portfolio/internal/authservice"
	"github.com/sushihentaime/portfolio/internal/common"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio content API: blog posts, photos and the admin session",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".env", "path to an env style config file, environment variables take precedence")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newHashPasswordCmd(),
	)

	return root
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations, then serve the HTTP API and deliver contact mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	logger := newLogger()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		return err
	}

	app, cleanup, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.serve(ctx); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations and exit",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := migrationURI(*configPath)
			if err != nil {
				return err
			}
			if err := common.MigrateUp(uri); err != nil {
				return err
			}
			newLogger().Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations, all of them unless --steps is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return errors.New("--steps must not be negative")
			}
			uri, err := migrationURI(*configPath)
			if err != nil {
				return err
			}
			if err := common.MigrateDown(uri, steps); err != nil {
				return err
			}
			newLogger().Info("migrations rolled back", slog.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (0 means all)")

	cmd.AddCommand(up, down)

	return cmd
}

func migrationURI(configPath string) (string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}

	uri := cfg.DatabaseURI()
	if uri == "" {
		return "", errors.New("DATABASE_URL or POSTGRES_USER and POSTGRES_DB must be set")
	}

	return uri, nil
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <secret>",
		Short: "Print the bcrypt hash to use as ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := authservice.HashSecret(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
}
