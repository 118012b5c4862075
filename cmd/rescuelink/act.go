package main

import (
	"context"
	"fmt"

	"rescuelink/internal/client"
	"rescuelink/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var idFlag = &cli.StringFlag{Name: "id", Usage: "Report id", Required: true}

var actCommand = &cli.Command{
	Name:  "act",
	Usage: "Perform one reporter, admin or rescue team action against the API",
	Subcommands: []*cli.Command{
		{
			Name:  "submit",
			Usage: "Submit a new report",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "type", Required: true},
				&cli.StringFlag{Name: "description"},
				&cli.StringFlag{Name: "location"},
				&cli.BoolFlag{Name: "sos", Usage: "Flag the report as an emergency SOS"},
			},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.Submit(ctx, types.ReportSubmission{
					Type:           c.String("type"),
					Description:    c.String("description"),
					Location:       c.String("location"),
					IsEmergencySOS: c.Bool("sos"),
				})
			}),
		},
		{
			Name:  "approve",
			Usage: "Approve a pending report",
			Flags: []cli.Flag{
				idFlag,
				&cli.StringFlag{Name: "severity", Value: string(types.DefaultSeverity)},
			},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.Approve(ctx, c.String("id"), types.Severity(c.String("severity")))
			}),
		},
		{
			Name:  "reject",
			Usage: "Reject a pending report",
			Flags: []cli.Flag{
				idFlag,
				&cli.StringFlag{Name: "reason"},
			},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.Reject(ctx, c.String("id"), c.String("reason"))
			}),
		},
		{
			Name:  "accept",
			Usage: "Accept the rescue mission for an approved report",
			Flags: []cli.Flag{idFlag},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.AcceptMission(ctx, c.String("id"))
			}),
		},
		{
			Name:  "complete",
			Usage: "Complete an active rescue mission",
			Flags: []cli.Flag{idFlag},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.CompleteMission(ctx, c.String("id"))
			}),
		},
		{
			Name:  "contact",
			Usage: "Add an emergency contact",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "phone", Required: true},
				&cli.StringFlag{Name: "relation"},
			},
			Action: withSynchronizer(func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error) {
				return s.AddContact(ctx, types.ContactInput{
					Name:     c.String("name"),
					Phone:    c.String("phone"),
					Relation: c.String("relation"),
				})
			}),
		},
	},
}

func withSynchronizer(fn func(ctx context.Context, c *cli.Context, s *client.Synchronizer) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return err
		}

		logger, closeLogs, err := newLogger(config)
		if err != nil {
			return err
		}
		defer closeLogs()

		_, synchronizer := newSynchronizer(config, logger)
		defer synchronizer.WaitIdle()

		result, err := fn(c.Context, c, synchronizer)
		if err != nil {
			return fmt.Errorf("%s failed: %w", c.Command.Name, err)
		}

		pp.Println(result)
		return nil
	}
}
