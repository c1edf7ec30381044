// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fieldvault/fieldvault/cmd/app/commands"
	"github.com/fieldvault/fieldvault/internal/app"
	"github.com/fieldvault/fieldvault/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "fieldvault",
		Usage:   "Field-level encryption service for protected records",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-domain-key",
				Usage: "Provision the secret for an encryption domain",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "domain",
						Aliases: []string{"d"},
						Value:   "",
						Usage:   "Encryption domain (defaults to ENCRYPTION_DOMAIN)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer closeContainer(container, logger)

					keyStore, err := container.KeyStore()
					if err != nil {
						return fmt.Errorf("failed to initialize key store: %w", err)
					}

					domain := cmd.String("domain")
					if domain == "" {
						domain = cfg.EncryptionDomain
					}

					return commands.RunCreateDomainKey(ctx, keyStore, logger, domain)
				},
			},
			{
				Name:  "backfill",
				Usage: "Encrypt legacy plaintext columns into their encrypted counterparts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Report how many rows would be migrated without changing anything",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer closeContainer(container, logger)

					backfillUseCase, err := container.BackfillUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize backfill use case: %w", err)
					}

					return commands.RunBackfill(ctx, backfillUseCase, logger, cmd.Bool("dry-run"))
				},
			},
			{
				Name:  "provision-defaults",
				Usage: "Seed the default placeholder records for an owner",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "owner-id",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Owner reference to seed defaults for",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer closeContainer(container, logger)

					provisionUseCase, err := container.ProvisionUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize provision use case: %w", err)
					}

					return commands.RunProvisionDefaults(ctx, provisionUseCase, logger, cmd.Int64("owner-id"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// closeContainer shuts down the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}
