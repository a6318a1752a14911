package validation

import (
	"strings"

	"draft-desk/internal/model"
)

// Field names used as keys in Error.Fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldImages      = "images"
)

var fieldOrder = []string{FieldTitle, FieldDescription, FieldTags, FieldImages}

// Error aggregates every failing field of a request.
type Error struct {
	Fields map[string]string
}

// Error returns the first failing message in field order.
func (e *Error) Error() string {
	for _, f := range fieldOrder {
		if msg, ok := e.Fields[f]; ok {
			return msg
		}
	}
	return "validation failed"
}

type collector map[string]string

func (c collector) add(field string, r Result) {
	if !r.Valid {
		c[field] = r.Error
	}
}

func (c collector) err() error {
	if len(c) == 0 {
		return nil
	}
	return &Error{Fields: c}
}

// Options toggles checks that go beyond the field contracts.
type Options struct {
	EnforceImagePayloads bool
}

// ValidateInput runs every field validator on a creation request.
func (r Rules) ValidateInput(in model.DraftInput, opts Options) error {
	c := collector{}
	c.add(FieldTitle, r.ValidateTitle(in.Title))
	c.add(FieldDescription, r.ValidateDescription(in.Description))
	c.add(FieldTags, r.ValidateTags(in.Tags))
	r.addImages(c, in.Images, opts)
	return c.err()
}

// ValidatePatch validates only the fields present in the patch.
func (r Rules) ValidatePatch(p model.DraftPatch, opts Options) error {
	c := collector{}
	if p.Title != nil {
		c.add(FieldTitle, r.ValidateTitle(*p.Title))
	}
	if p.Description != nil {
		c.add(FieldDescription, r.ValidateDescription(*p.Description))
	}
	if p.Tags != nil {
		c.add(FieldTags, r.ValidateTags(*p.Tags))
	}
	if p.Images != nil {
		r.addImages(c, *p.Images, opts)
	}
	return c.err()
}

func (r Rules) addImages(c collector, images []string, opts Options) {
	res := r.ValidateImages(images)
	if res.Valid && opts.EnforceImagePayloads {
		res = r.ValidateImagePayloads(images)
	}
	c.add(FieldImages, res)
}

// DedupeTags trims tags, drops empty ones and removes repeats, keeping first occurrences.
// The store accepts duplicates; this is for callers that want to reject them up front.
func DedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeHTML escapes characters that could open markup when text is embedded in HTML.
func SanitizeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
