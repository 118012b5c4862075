package main

import (
	"fmt"
	"io"
	"os"

	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the process logger. With LOG_FILE set, entries are also
// written to a rotated file.
func newLogger(config *types.Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	switch config.LogFormat {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if config.LogFile == "" {
		return logger, func() {}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   config.LogFile,
		MaxSize:    config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAge:     config.LogMaxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))

	return logger, func() { _ = rotator.Close() }, nil
}
