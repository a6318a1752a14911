package store

import (
	"context"
	"errors"

	"draft-desk/internal/model"
)

var (
	ErrNotFound    = errors.New("draft not found")
	ErrPersistence = errors.New("draft medium unavailable")

	// ErrMissing is returned by Medium.Load when no collection has been written yet.
	ErrMissing = errors.New("draft collection missing")
)

// Store is durable CRUD over the draft collection.
type Store interface {
	List(ctx context.Context) ([]model.Draft, error)
	Get(ctx context.Context, id string) (*model.Draft, error)
	Create(ctx context.Context, in model.DraftInput) (*model.Draft, error)
	Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Draft, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Medium holds the encoded draft collection as a single value.
// Save must replace the whole value atomically.
type Medium interface {
	// Init creates an empty collection if none exists yet.
	Init(ctx context.Context, empty []byte) error
	// Load returns ErrMissing if the collection does not exist.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}
