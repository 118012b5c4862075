package main

import (
	"time"

	"rescuelink/internal/client"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
)

func newSynchronizer(config *types.Config, logger *logrus.Logger) (*client.Client, *client.Synchronizer) {
	api := client.New(config.APIBaseURL, time.Duration(config.ClientTimeoutSec)*time.Second, logger)
	return api, client.NewSynchronizer(api, client.NewLogNotifier(logger), logger, config.ReconcileAfterMutation)
}
