package main

import (
	"fmt"
	"os"

	"rescuelink/internal/export"
	"rescuelink/pkg/types"

	"github.com/urfave/cli/v2"
)

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Write every report into an XLSX workbook",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file",
			Value:   "reports.xlsx",
		},
	},
	Action: func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return err
		}

		logger, closeLogs, err := newLogger(config)
		if err != nil {
			return err
		}
		defer closeLogs()

		api, _ := newSynchronizer(config, logger)

		reports, err := api.ListReports(c.Context, types.ReportFilter{})
		if err != nil {
			return fmt.Errorf("failed to fetch reports: %w", err)
		}

		out, err := os.Create(c.String("out"))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.String("out"), err)
		}
		defer out.Close()

		if err := export.WriteReports(out, reports); err != nil {
			return err
		}

		logger.WithField("reports", len(reports)).Infof("wrote %s", c.String("out"))
		return out.Close()
	},
}
