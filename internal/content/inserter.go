// Package content holds the pure HTML transforms applied to generated
// articles before publishing.
package content

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	h2Regex  = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)
	tagRegex = regexp.MustCompile(`<[^>]*>`)
)

// Heading is one second-level heading found in article HTML.
type Heading struct {
	// FullMatch is the exact matched markup, <h2 ...>...</h2>.
	FullMatch string
	// Text is the inner text with markup stripped.
	Text string
	// Index is the byte offset of FullMatch in the original content.
	Index int
}

// ExtractHeadings scans content for second-level headings in document order.
func ExtractHeadings(content string) []Heading {
	var headings []Heading
	for _, loc := range h2Regex.FindAllStringSubmatchIndex(content, -1) {
		full := content[loc[0]:loc[1]]
		inner := content[loc[2]:loc[3]]
		headings = append(headings, Heading{
			FullMatch: full,
			Text:      strings.TrimSpace(tagRegex.ReplaceAllString(inner, "")),
			Index:     loc[0],
		})
	}
	return headings
}

// StripTags removes HTML markup and collapses whitespace, for use in
// image-prompt excerpts.
func StripTags(s string) string {
	plain := tagRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(plain), " ")
}

// InsertImages inserts one image block immediately after each heading, pairing
// heading i with imageURLs[i]. Trailing headings without an image are left
// untouched; extra URLs are dropped. Each insertion point is the heading's
// original offset shifted by the total length of all earlier insertions, so
// later blocks land exactly after their intended heading.
func InsertImages(article string, headings []Heading, imageURLs []string) string {
	result := article
	offset := 0

	for i := 0; i < len(headings) && i < len(imageURLs); i++ {
		h := headings[i]
		block := imageBlock(imageURLs[i], h.Text)
		pos := h.Index + len(h.FullMatch) + offset

		result = result[:pos] + block + result[pos:]
		offset += len(block)
	}

	return result
}

func imageBlock(url, alt string) string {
	return fmt.Sprintf("\n<figure class=\"wp-block-image\"><img src=%q alt=%q /></figure>\n", url, alt)
}
