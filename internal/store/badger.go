package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const badgerCollectionKey = "drafts:collection"

// BadgerMedium stores the whole collection under one key of an embedded badger DB.
type BadgerMedium struct {
	db *badger.DB
}

// OpenBadgerMedium opens (or creates) a badger DB at path.
// Badger holds a directory lock, so only one process can have it open.
func OpenBadgerMedium(path string) (*BadgerMedium, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Silence default logger
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerMedium{db: db}, nil
}

// NewBadgerMedium wraps an already open DB. Close will close it.
func NewBadgerMedium(db *badger.DB) *BadgerMedium {
	return &BadgerMedium{db: db}
}

func (m *BadgerMedium) Init(_ context.Context, empty []byte) error {
	return m.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerCollectionKey))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(badgerCollectionKey), empty)
	})
}

func (m *BadgerMedium) Load(_ context.Context) ([]byte, error) {
	var data []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerCollectionKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMissing
	}
	return data, err
}

func (m *BadgerMedium) Save(_ context.Context, data []byte) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerCollectionKey), data)
	})
}

func (m *BadgerMedium) Close() error {
	return m.db.Close()
}

// CollectGarbage runs badger's value log GC every interval until ctx is done.
// Each rewrite of the collection leaves a stale value behind, so long-running
// servers should call this.
func (m *BadgerMedium) CollectGarbage(ctx context.Context, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.gcOnce(); err != nil {
				logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

func (m *BadgerMedium) gcOnce() error {
	for {
		err := m.db.RunValueLogGC(0.7)
		if err == nil {
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		return err
	}
}
