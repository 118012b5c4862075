package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rescuelink/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var syncCommand = &cli.Command{
	Name:  "sync",
	Usage: "Mirror the API into a local cache and print the derived views",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Keep refreshing every REFRESH_INTERVAL_SEC until interrupted",
		},
	},
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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
		synchronizer.OnRefresh(printViews)

		if !c.Bool("watch") {
			return synchronizer.Refresh(ctx)
		}

		return synchronizer.Watch(ctx, time.Duration(config.RefreshIntervalSec)*time.Second)
	},
}

func printViews(v types.Views) {
	summary := map[types.View]int{}
	for _, name := range types.AllViews {
		summary[name] = len(v.Get(name))
	}

	pp.Println(summary)
	if len(v.Active) > 0 {
		pp.Println(v.Active)
	}
}
