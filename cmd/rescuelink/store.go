package main

import (
	"context"
	"fmt"
	"time"

	"rescuelink/internal/db"
	"rescuelink/internal/store"
	"rescuelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// openRecordStore wires the configured backend and lock. The returned func
// releases whatever connections were opened.
func openRecordStore(ctx context.Context, config *types.Config, logger *logrus.Logger) (*store.RecordStore, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var backend store.Backend
	switch config.StoreDriver {
	case types.StoreDriverPostgres:
		pool, err := db.Connect(ctx, config)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)

		pg := store.NewPostgresBackend(pool, config.DocumentID)
		if err := pg.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		backend = pg

	case types.StoreDriverS3:
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		backend = store.NewS3Backend(s3.NewFromConfig(awsConfig), config.S3Bucket, config.S3Key)

	default:
		backend = store.NewFileBackend(config.DataFile)
	}

	var locker store.Locker
	if config.LockDriver == types.LockDriverRedis {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			closeAll()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", config.RedisAddr, err)
		}
		closers = append(closers, func() { _ = client.Close() })

		locker = store.NewRedisLocker(client, config.RedisLockKey, time.Duration(config.LockTTLSec)*time.Second, logger)
	}

	logger.WithFields(logrus.Fields{
		"store_driver": backend.Name(),
		"lock_driver":  config.LockDriver,
	}).Info("record store configured")

	return store.NewRecordStore(backend, locker, logger, config.StoreMaxRetries), closeAll, nil
}
