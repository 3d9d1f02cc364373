package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHeadings(t *testing.T) {
	html := `<p>intro</p><h2>First Section</h2><p>body</p><H2 class="x">Second <em>Section</em></H2><p>more</p>`

	headings := ExtractHeadings(html)
	require.Len(t, headings, 2)

	assert.Equal(t, "<h2>First Section</h2>", headings[0].FullMatch)
	assert.Equal(t, "First Section", headings[0].Text)
	assert.Equal(t, strings.Index(html, "<h2>"), headings[0].Index)

	// Case-insensitive match, attributes kept in FullMatch, inner markup stripped
	assert.Equal(t, `<H2 class="x">Second <em>Section</em></H2>`, headings[1].FullMatch)
	assert.Equal(t, "Second Section", headings[1].Text)
}

func TestExtractHeadingsNonGreedy(t *testing.T) {
	html := `<h2>A</h2><p>x</p><h2>B</h2>`
	headings := ExtractHeadings(html)
	require.Len(t, headings, 2)
	assert.Equal(t, "A", headings[0].Text)
	assert.Equal(t, "B", headings[1].Text)
}

func TestExtractHeadingsEmpty(t *testing.T) {
	assert.Empty(t, ExtractHeadings("<p>no headings here</p>"))
}

func TestInsertImagesAfterEachHeading(t *testing.T) {
	html := `<h2>One</h2><p>a</p><h2>Two</h2><p>b</p><h2>Three</h2><p>c</p>`
	headings := ExtractHeadings(html)
	urls := []string{"https://cms.example.com/1.png", "https://cms.example.com/2.png", "https://cms.example.com/3.png"}

	result := InsertImages(html, headings, urls)

	for i, h := range headings {
		// The image block must immediately follow the heading's full match
		expected := h.FullMatch + fmt.Sprintf("\n<figure class=\"wp-block-image\"><img src=%q alt=%q /></figure>\n", urls[i], h.Text)
		assert.Contains(t, result, expected, "image %d not immediately after heading %q", i, h.Text)
	}

	// Original paragraphs survive in order
	assert.Less(t, strings.Index(result, "<p>a</p>"), strings.Index(result, "<p>b</p>"))
	assert.Less(t, strings.Index(result, "<p>b</p>"), strings.Index(result, "<p>c</p>"))
}

func TestInsertImagesFewerImagesThanHeadings(t *testing.T) {
	html := `<h2>One</h2><h2>Two</h2><h2>Three</h2>`
	headings := ExtractHeadings(html)

	result := InsertImages(html, headings, []string{"u1"})

	assert.Equal(t, 1, strings.Count(result, "<figure"))
	// Trailing headings untouched
	assert.Contains(t, result, "<h2>Two</h2><h2>Three</h2>")
}

func TestInsertImagesMoreImagesThanHeadings(t *testing.T) {
	html := `<h2>Only</h2><p>body</p>`
	headings := ExtractHeadings(html)

	result := InsertImages(html, headings, []string{"u1", "u2", "u3"})

	assert.Equal(t, 1, strings.Count(result, "<figure"))
	assert.Contains(t, result, `src="u1"`)
	assert.NotContains(t, result, "u2")
}

func TestInsertImagesNoImagesIsNoOp(t *testing.T) {
	html := `<h2>One</h2><p>a</p>`
	headings := ExtractHeadings(html)

	assert.Equal(t, html, InsertImages(html, headings, nil))
}

// Offsets must stay correct no matter how many blocks were inserted before:
// each insertion point is the original offset plus the length of everything
// inserted so far.
func TestInsertImagesOffsetAccumulation(t *testing.T) {
	var sb strings.Builder
	n := 25
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<h2>Section %d</h2><p>text %d</p>", i, i)
	}
	html := sb.String()
	headings := ExtractHeadings(html)
	require.Len(t, headings, n)

	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cms.example.com/img-%d.png", i)
	}

	result := InsertImages(html, headings, urls)
	assert.Equal(t, n, strings.Count(result, "<figure"))

	for i := 0; i < n; i++ {
		heading := fmt.Sprintf("<h2>Section %d</h2>", i)
		idx := strings.Index(result, heading)
		require.GreaterOrEqual(t, idx, 0)
		after := result[idx+len(heading):]
		assert.True(t, strings.HasPrefix(after, fmt.Sprintf("\n<figure class=\"wp-block-image\"><img src=\"https://cms.example.com/img-%d.png\"", i)),
			"section %d image landed in the wrong place", i)
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world again",
		StripTags("<p>Hello   <strong>world</strong></p>\n\n<p>again</p>"))
	assert.Equal(t, "plain", StripTags("plain"))
}
