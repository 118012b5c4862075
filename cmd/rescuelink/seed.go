package main

import (
	"context"
	"fmt"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the record store with demo reports and contacts",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Empty the record store before seeding",
		},
	},
	Action: func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, closeLogs, err := newLogger(config)
		if err != nil {
			return err
		}
		defer closeLogs()

		ctx := context.Background()

		records, closeStore, err := openRecordStore(ctx, config, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if c.Bool("reset") {
			if err := seed.Reset(ctx, records); err != nil {
				return err
			}
		}

		logger.Info("Seeding reports...")
		if _, err := seed.SeedReports(ctx, records, lifecycle.NewMachine(true)); err != nil {
			return fmt.Errorf("failed to seed reports: %w", err)
		}

		logger.Info("Seeding contacts...")
		if _, err := seed.SeedContacts(ctx, records); err != nil {
			return fmt.Errorf("failed to seed contacts: %w", err)
		}

		logger.Info("Seed complete")
		return nil
	},
}
