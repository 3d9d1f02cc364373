package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/yufyaj/seo-writer/internal/content"
	"github.com/yufyaj/seo-writer/pkg/retry"
	"github.com/yufyaj/seo-writer/pkg/util"
)

// excerptRunes bounds how much article text feeds the image prompt.
const excerptRunes = 200

// ImageParams is the input for one illustration.
type ImageParams struct {
	Title   string
	Content string
	Keyword string
}

// Image is a decoded illustration payload.
type Image struct {
	Data     []byte
	MimeType string
}

// BuildImagePrompt builds the illustration prompt from the title, keyword and
// a short tag-stripped excerpt of the article body.
func BuildImagePrompt(params ImageParams) string {
	plainText := util.TruncateRunes(content.StripTags(params.Content), excerptRunes)

	keywordLine := ""
	if params.Keyword != "" {
		keywordLine = "Keyword: " + params.Keyword
	}

	return strings.TrimSpace(fmt.Sprintf(`
Generate a professional featured image for a blog article.

Article title: %s
%s
Article summary: %s

Requirements:
- Modern, clean design
- Bright and positive impression
- Suitable for a professional business blog
- No text in the image
- Composition suited to a 16:9 aspect ratio
`, params.Title, keywordLine, plainText))
}

// GenerateImage invokes the image model and returns the first image payload
// in the reply. The aspect ratio is fixed at 16:9.
func (c *Client) GenerateImage(ctx context.Context, params ImageParams) (*Image, error) {
	prompt := BuildImagePrompt(params)

	return retry.Do(ctx, c.config.Retry, c.logger, func() (*Image, error) {
		resp, err := c.generateContent(c.config.ImageModel, generateRequest{
			Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
			GenerationConfig: &generationConfig{
				ResponseModalities: []string{"IMAGE"},
				ImageConfig:        &imageConfig{AspectRatio: "16:9"},
			},
		})
		if err != nil {
			return nil, err
		}

		for _, cand := range resp.Candidates {
			for _, part := range cand.Content.Parts {
				if part.InlineData == nil || part.InlineData.Data == "" {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				mimeType := part.InlineData.MimeType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return &Image{Data: data, MimeType: mimeType}, nil
			}
		}

		return nil, ErrNoImage
	})
}
