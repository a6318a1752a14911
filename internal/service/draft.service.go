package service

import (
	"context"
	"errors"
	"strings"

	"draft-desk/internal/model"
	"draft-desk/internal/store"
	"draft-desk/internal/validation"

	"go.uber.org/zap"
)

// DraftService is the authoritative boundary in front of the store: every write is
// validated and normalized here, whatever the caller checked beforehand.
type DraftService struct {
	store  store.Store
	rules  validation.Rules
	opts   validation.Options
	logger *zap.Logger
}

func NewDraftService(st store.Store, rules validation.Rules, opts validation.Options, logger *zap.Logger) *DraftService {
	return &DraftService{store: st, rules: rules, opts: opts, logger: logger}
}

func (s *DraftService) List(ctx context.Context) ([]model.Draft, error) {
	return s.store.List(ctx)
}

func (s *DraftService) Get(ctx context.Context, id string) (*model.Draft, error) {
	return s.store.Get(ctx, id)
}

// GetPublished returns the draft only when it is published. Unpublished drafts
// are reported as store.ErrNotFound, same as missing ones.
func (s *DraftService) GetPublished(ctx context.Context, id string) (*model.Draft, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.Published {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (s *DraftService) Create(ctx context.Context, in model.DraftInput) (*model.Draft, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	if err := s.rules.ValidateInput(in, s.opts); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	d, err := s.store.Create(ctx, in)
	if err != nil {
		s.logger.Error("Failed to create draft", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Draft created", zap.String("draft_id", d.ID))
	return d, nil
}

func (s *DraftService) Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Draft, error) {
	if err := s.rules.ValidatePatch(patch, s.opts); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
	}

	d, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to update draft", zap.String("draft_id", id), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("Draft updated", zap.String("draft_id", id), zap.Bool("published", d.Published))
	return d, nil
}

// SetPublished toggles the published flag.
func (s *DraftService) SetPublished(ctx context.Context, id string, published bool) (*model.Draft, error) {
	return s.Update(ctx, id, model.DraftPatch{Published: &published})
}

func (s *DraftService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to delete draft", zap.String("draft_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Draft deleted", zap.String("draft_id", id))
	return nil
}
