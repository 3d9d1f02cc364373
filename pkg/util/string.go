package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// GenerateSlug creates a URL-friendly slug from title
func GenerateSlug(title string) string {
	// Convert to lowercase
	slug := strings.ToLower(title)

	// Replace spaces and special characters with hyphens
	reg := regexp.MustCompile(`[^a-z0-9\p{Han}\p{Hiragana}\p{Katakana}]+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Remove leading/trailing hyphens
	slug = strings.Trim(slug, "-")

	// Limit length
	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.Trim(slug, "-")
	}

	return slug
}

// FeaturedImageFilename builds the upload filename for a job's featured image.
func FeaturedImageFilename(jobID uint) string {
	return fmt.Sprintf("article-%d-featured-%s.png", jobID, shortID())
}

// SectionImageFilename builds the upload filename for the n-th section image
// (1-based).
func SectionImageFilename(jobID uint, n int) string {
	return fmt.Sprintf("article-%d-section-%d-%s.png", jobID, n, shortID())
}

func shortID() string {
	return strings.Split(uuid.NewString(), "-")[0]
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
