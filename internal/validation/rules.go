// Package validation holds the acceptance rules for user-editable draft fields.
//
// Validators are pure and deterministic, so the same checks can run before
// submission in a client and authoritatively at the API boundary.
package validation

// Rules are the field limits enforced on drafts.
type Rules struct {
	TitleMinLength       int
	TitleMaxLength       int
	DescriptionMinLength int
	DescriptionMaxLength int
	TagsMaxCount         int
	TagMaxLength         int
	ImagesMaxCount       int
	ImageMaxBytes        int64
	ImageAllowedTypes    []string
}

// DefaultRules returns the limits the authoring UI advertises.
func DefaultRules() Rules {
	return Rules{
		TitleMinLength:       3,
		TitleMaxLength:       200,
		DescriptionMinLength: 10,
		DescriptionMaxLength: 2000,
		TagsMaxCount:         10,
		TagMaxLength:         50,
		ImagesMaxCount:       5,
		ImageMaxBytes:        10 << 20,
		ImageAllowedTypes:    []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}
}

var defaultRules = DefaultRules()

// Result is the outcome of a single field check.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(msg string) Result { return Result{Valid: false, Error: msg} }
