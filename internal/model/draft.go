package model

import (
	"time"

	"github.com/google/uuid"
)

// Draft is a piece of content authored by a creator. It stays private until published.
type Draft struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DraftInput holds the user-supplied fields of a new draft.
type DraftInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// DraftPatch is a partial update. A nil field is left untouched.
type DraftPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Published   *bool     `json:"published,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p DraftPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil && p.Images == nil && p.Published == nil
}

// NewDraft creates an unpublished Draft from the input, stamped with the given time.
func NewDraft(in DraftInput, now time.Time) Draft {
	return Draft{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Tags:        cloneStrings(in.Tags),
		Images:      cloneStrings(in.Images),
		Published:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges the supplied patch fields into d and refreshes UpdatedAt.
// UpdatedAt never moves before CreatedAt.
func (d *Draft) Apply(p DraftPatch, now time.Time) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Tags != nil {
		d.Tags = cloneStrings(*p.Tags)
	}
	if p.Images != nil {
		d.Images = cloneStrings(*p.Images)
	}
	if p.Published != nil {
		d.Published = *p.Published
	}
	if now.Before(d.CreatedAt) {
		now = d.CreatedAt
	}
	d.UpdatedAt = now
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (d Draft) Clone() Draft {
	d.Tags = cloneStrings(d.Tags)
	d.Images = cloneStrings(d.Images)
	return d
}

// Normalize replaces nil slices with empty ones so they encode as [] rather than null.
func (d *Draft) Normalize() {
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.Images == nil {
		d.Images = []string{}
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
