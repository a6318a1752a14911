package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"draft-desk/internal/model"

	"go.uber.org/zap"
)

// CollectionStore keeps every draft in one collection on a Medium.
// Each mutation reads the full collection, changes it in memory and writes it back
// while holding the write lock, so concurrent callers in this process are serialized.
type CollectionStore struct {
	mu     sync.RWMutex
	medium Medium
	logger *zap.Logger
	now    func() time.Time
}

// NewCollectionStore bootstraps the medium and returns a store over it.
func NewCollectionStore(ctx context.Context, medium Medium, logger *zap.Logger) (*CollectionStore, error) {
	if err := medium.Init(ctx, []byte("[]")); err != nil {
		return nil, fmt.Errorf("%w: init: %w", ErrPersistence, err)
	}
	return &CollectionStore{
		medium: medium,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Medium returns the medium the store writes to.
func (s *CollectionStore) Medium() Medium {
	return s.medium
}

// Close releases the medium.
func (s *CollectionStore) Close() error {
	return s.medium.Close()
}

// List returns all drafts in stored order. An unreadable or corrupt medium is
// reported as an empty collection.
func (s *CollectionStore) List(ctx context.Context) ([]model.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("Reading drafts failed, serving empty list", zap.Error(err))
		return []model.Draft{}, nil
	}
	return drafts, nil
}

// Get returns the draft with the given id or ErrNotFound. Like List, an
// unreadable medium holds no drafts.
func (s *CollectionStore) Get(ctx context.Context, id string) (*model.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("Reading drafts failed, draft treated as missing", zap.String("draft_id", id), zap.Error(err))
		return nil, ErrNotFound
	}
	i := indexOf(drafts, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return &drafts[i], nil
}

// Create appends a new unpublished draft and persists the collection.
func (s *CollectionStore) Create(ctx context.Context, in model.DraftInput) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	d := model.NewDraft(in, s.now())
	for indexOf(drafts, d.ID) >= 0 {
		d = model.NewDraft(in, d.CreatedAt)
	}
	drafts = append(drafts, d)

	if err := s.save(ctx, drafts); err != nil {
		return nil, err
	}
	s.logger.Debug("Draft created", zap.String("draft_id", d.ID))
	out := d.Clone()
	return &out, nil
}

// Update merges the patch into the draft and persists the collection.
func (s *CollectionStore) Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(drafts, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	drafts[i].Apply(patch, s.now())
	if err := s.save(ctx, drafts); err != nil {
		return nil, err
	}
	s.logger.Debug("Draft updated", zap.String("draft_id", id))
	out := drafts[i].Clone()
	return &out, nil
}

// Delete removes the draft permanently.
func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(drafts, id)
	if i < 0 {
		return ErrNotFound
	}

	drafts = slices.Delete(drafts, i, i+1)
	if err := s.save(ctx, drafts); err != nil {
		return err
	}
	s.logger.Debug("Draft deleted", zap.String("draft_id", id))
	return nil
}

func (s *CollectionStore) load(ctx context.Context) ([]model.Draft, error) {
	data, err := s.medium.Load(ctx)
	if errors.Is(err, ErrMissing) {
		// Removed or expired behind our back: start over, the next save recreates it.
		return []model.Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrPersistence, err)
	}
	var drafts []model.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrPersistence, err)
	}
	if drafts == nil {
		return nil, fmt.Errorf("%w: decode: collection is not an array", ErrPersistence)
	}
	for i := range drafts {
		drafts[i].Normalize()
	}
	return drafts, nil
}

func (s *CollectionStore) save(ctx context.Context, drafts []model.Draft) error {
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	if err := s.medium.Save(ctx, data); err != nil {
		return fmt.Errorf("%w: save: %w", ErrPersistence, err)
	}
	return nil
}

func indexOf(drafts []model.Draft, id string) int {
	return slices.IndexFunc(drafts, func(d model.Draft) bool { return d.ID == id })
}
