package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"rescuelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if err := godotenv.Load(cCtx.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	return processConfig(cCtx.String("env-prefix"))
}

func processConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if !slices.Contains([]string{types.StoreDriverFile, types.StoreDriverPostgres, types.StoreDriverS3}, c.StoreDriver) {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if !slices.Contains([]string{types.LockDriverLocal, types.LockDriverRedis}, c.LockDriver) {
		return nil, fmt.Errorf("unknown LOCK_DRIVER %q", c.LockDriver)
	}

	if c.StoreDriver == types.StoreDriverPostgres && c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL for the postgres store driver")
	}

	if c.StoreDriver == types.StoreDriverS3 && c.S3Bucket == "" {
		return nil, fmt.Errorf("set S3_BUCKET for the s3 store driver")
	}

	if c.StoreMaxRetries < 0 {
		c.StoreMaxRetries = 0
	}

	if c.LockTTLSec == 0 {
		c.LockTTLSec = 10
	}

	if c.RefreshIntervalSec == 0 {
		c.RefreshIntervalSec = 30
	}

	if c.ClientTimeoutSec == 0 {
		c.ClientTimeoutSec = 10
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
