package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/server"
	"rescuelink/internal/service"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP API",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, closeLogs, err := newLogger(config)
	if err != nil {
		return err
	}
	defer closeLogs()

	records, closeStore, err := openRecordStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if !config.StrictTransitions {
		logger.Warn("strict transitions disabled, out of order updates will overwrite reports")
	}

	srv := server.New(
		config,
		logger,
		service.NewReportService(records, lifecycle.NewMachine(config.StrictTransitions), logger),
		service.NewContactService(records, logger),
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
