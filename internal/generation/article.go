package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/yufyaj/seo-writer/internal/models"
	"github.com/yufyaj/seo-writer/pkg/retry"
)

// ArticleParams is everything the article prompt is built from.
type ArticleParams struct {
	Company        CompanyInfo
	Profile        ProfileInfo
	Strategy       models.KeywordStrategy
	Keyword        string
	PromptTemplate string
}

type CompanyInfo struct {
	Name      string
	BrandName string
	AboutText string
	SiteURL   string
}

type ProfileInfo struct {
	Name        string
	Description string
}

// Article is the validated structured reply for one generated post.
type Article struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	MetaDescription string `json:"meta_description,omitempty"`
	Excerpt         string `json:"excerpt,omitempty"`
}

// SelectKeyword flattens the categorized keyword lists and draws one
// uniformly at random. Returns "" for an all-empty strategy.
func SelectKeyword(strategy models.KeywordStrategy, rng *rand.Rand) string {
	all := strategy.AllKeywords()
	if len(all) == 0 {
		return ""
	}
	return all[rng.Intn(len(all))]
}

func (c *Client) SelectKeyword(strategy models.KeywordStrategy) string {
	return SelectKeyword(strategy, c.rng)
}

// BuildArticlePrompt builds the deterministic text-generation prompt.
func BuildArticlePrompt(params ArticleParams) string {
	var companyInfo []string
	companyInfo = append(companyInfo, "Company name: "+params.Company.Name)
	if params.Company.BrandName != "" {
		companyInfo = append(companyInfo, "Brand name: "+params.Company.BrandName)
	}
	if params.Company.AboutText != "" {
		companyInfo = append(companyInfo, "About: "+params.Company.AboutText)
	}
	if params.Company.SiteURL != "" {
		companyInfo = append(companyInfo, "Site URL: "+params.Company.SiteURL)
	}

	var profileInfo []string
	profileInfo = append(profileInfo, "Name: "+params.Profile.Name)
	if params.Profile.Description != "" {
		profileInfo = append(profileInfo, "Description: "+params.Profile.Description)
	}

	strategyInfo := ""
	if params.Strategy.StrategyConcept != "" {
		strategyInfo = "SEO strategy: " + params.Strategy.StrategyConcept
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are a professional web writer with deep SEO expertise.
Write a high-quality blog article based on the information below.

## Company
%s

## Posting profile
%s

## SEO strategy
%s

## Target keyword
%s

## Article type and structure instructions
%s

## Output format
Respond with JSON in exactly this shape:
{
  "title": "article title (compelling and SEO-aware)",
  "content": "article body (HTML, using <h2>, <h3>, <p>, <ul>, <li> and similar tags)",
  "meta_description": "meta description, 160 characters or less",
  "excerpt": "article summary, roughly 100 characters"
}

Important:
- Output valid JSON only
- Write the article body as HTML
- Structure the article with SEO in mind
- Make the content genuinely useful to the reader
- Do not include call-to-action sections such as "contact us"
`,
		strings.Join(companyInfo, "\n"),
		strings.Join(profileInfo, "\n"),
		strategyInfo,
		params.Keyword,
		params.PromptTemplate))
}

// GenerateArticle invokes the text model and validates the reply as a
// structured article. Rate-limit and transient server errors are retried.
func (c *Client) GenerateArticle(ctx context.Context, params ArticleParams) (*Article, error) {
	prompt := BuildArticlePrompt(params)

	raw, err := retry.Do(ctx, c.config.Retry, c.logger, func() (string, error) {
		resp, err := c.generateContent(c.config.TextModel, generateRequest{
			Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
			GenerationConfig: &generationConfig{
				ResponseMimeType: "application/json",
			},
		})
		if err != nil {
			return "", err
		}

		text := resp.firstText()
		if text == "" {
			return "", ErrEmptyOutput
		}
		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return ParseArticle(raw)
}

// ParseArticle validates a raw model reply against the article shape.
// Markdown code fences around the JSON are tolerated.
func ParseArticle(raw string) (*Article, error) {
	cleaned := stripCodeFence(raw)

	var article Article
	if err := json.Unmarshal([]byte(cleaned), &article); err != nil {
		return nil, &InvalidOutputError{Reason: "reply is not valid JSON: " + err.Error(), Raw: raw}
	}

	if article.Title == "" {
		return nil, &InvalidOutputError{Reason: "missing title", Raw: raw}
	}
	if article.Content == "" {
		return nil, &InvalidOutputError{Reason: "missing content", Raw: raw}
	}

	return &article, nil
}

func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
