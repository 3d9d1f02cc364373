package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces & Symbols!  ", "spaces-symbols"},
		{"既にスラッグ", "既にスラッグ"},
		{"MiXeD Case 123", "mixed-case-123"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSlug(tt.title))
	}

	long := GenerateSlug(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(long), 50)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "ab", TruncateRunes("abcd", 2))
	assert.Equal(t, "日本", TruncateRunes("日本語テキスト", 2))
}

func TestImageFilenames(t *testing.T) {
	featured := FeaturedImageFilename(42)
	assert.Contains(t, featured, "article-42-featured-")
	assert.True(t, strings.HasSuffix(featured, ".png"))

	section := SectionImageFilename(42, 3)
	assert.Contains(t, section, "article-42-section-3-")

	// Random suffix keeps repeated uploads distinct
	assert.NotEqual(t, FeaturedImageFilename(42), FeaturedImageFilename(42))
}
