package validation

import (
	"encoding/base64"
	"fmt"
	"mime"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidateTitle checks a title against the default rules.
func ValidateTitle(title string) Result { return defaultRules.ValidateTitle(title) }

// ValidateDescription checks a description against the default rules.
func ValidateDescription(desc string) Result { return defaultRules.ValidateDescription(desc) }

// ValidateTags checks a tag list against the default rules.
func ValidateTags(tags []string) Result { return defaultRules.ValidateTags(tags) }

// ValidateImages checks an image list against the default rules.
func ValidateImages(images []string) Result { return defaultRules.ValidateImages(images) }

func (r Rules) ValidateTitle(title string) Result {
	return checkText("Title", title, r.TitleMinLength, r.TitleMaxLength)
}

func (r Rules) ValidateDescription(desc string) Result {
	return checkText("Description", desc, r.DescriptionMinLength, r.DescriptionMaxLength)
}

// ValidateTags accepts an empty list and duplicate tags.
func (r Rules) ValidateTags(tags []string) Result {
	if len(tags) > r.TagsMaxCount {
		return fail(fmt.Sprintf("Maximum %d tags allowed", r.TagsMaxCount))
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > r.TagMaxLength {
			return fail(fmt.Sprintf("Each tag must not exceed %d characters", r.TagMaxLength))
		}
	}
	return ok()
}

// ValidateImages only enforces the image count. See ValidateImagePayloads for size and type.
func (r Rules) ValidateImages(images []string) Result {
	if len(images) > r.ImagesMaxCount {
		return fail(fmt.Sprintf("Maximum %d images allowed", r.ImagesMaxCount))
	}
	return ok()
}

// ValidateImagePayloads checks that every image is a base64 data URI of an
// allowed MIME type whose decoded size fits ImageMaxBytes.
func (r Rules) ValidateImagePayloads(images []string) Result {
	for i, img := range images {
		mediaType, payload, err := splitDataURI(img)
		if err != nil {
			return fail(fmt.Sprintf("Image %d is not a valid data URI", i+1))
		}
		if !slices.Contains(r.ImageAllowedTypes, mediaType) {
			return fail(fmt.Sprintf("Image %d has unsupported type %q", i+1, mediaType))
		}
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > r.ImageMaxBytes+2 {
			return fail(fmt.Sprintf("Image %d exceeds %dMB", i+1, r.ImageMaxBytes>>20))
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fail(fmt.Sprintf("Image %d is not valid base64", i+1))
		}
		if int64(len(decoded)) > r.ImageMaxBytes {
			return fail(fmt.Sprintf("Image %d exceeds %dMB", i+1, r.ImageMaxBytes>>20))
		}
	}
	return ok()
}

func checkText(field, text string, minLen, maxLen int) Result {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return fail(field + " is required")
	case n < minLen:
		return fail(fmt.Sprintf("%s must be at least %d characters", field, minLen))
	case n > maxLen:
		return fail(fmt.Sprintf("%s must not exceed %d characters", field, maxLen))
	}
	return ok()
}

// splitDataURI parses "data:<type>[;params];base64,<payload>".
func splitDataURI(uri string) (string, string, error) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", fmt.Errorf("missing data: scheme")
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", fmt.Errorf("missing payload separator")
	}
	header, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", "", fmt.Errorf("payload is not base64")
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", "", err
	}
	return mediaType, payload, nil
}
