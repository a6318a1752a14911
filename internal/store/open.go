package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Options select and configure the medium behind the store.
type Options struct {
	Backend    string
	DataFile   string
	BadgerPath string
	RedisAddr  string
	RedisKey   string
}

// Open builds the configured medium and a CollectionStore over it.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*CollectionStore, error) {
	var (
		medium Medium
		err    error
	)
	switch opts.Backend {
	case BackendFile, "":
		medium, err = NewFileMedium(opts.DataFile)
	case BackendBadger:
		medium, err = OpenBadgerMedium(opts.BadgerPath)
	case BackendRedis:
		medium, err = NewRedisMedium(ctx, opts.RedisAddr, opts.RedisKey)
	default:
		err = fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	st, err := NewCollectionStore(ctx, medium, logger)
	if err != nil {
		medium.Close()
		return nil, err
	}
	logger.Info("Draft store ready", zap.String("backend", opts.Backend))
	return st, nil
}
