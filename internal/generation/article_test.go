package generation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yufyaj/seo-writer/internal/models"
)

func TestSelectKeywordEmptyStrategy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, "", SelectKeyword(models.KeywordStrategy{}, rng))
}

func TestSelectKeywordDrawsFromUnion(t *testing.T) {
	strategy := models.KeywordStrategy{
		HeadMiddle:           []string{"a", "b"},
		TransactionalCV:      []string{"c"},
		InformationalKnowhow: []string{"d"},
		BusinessSpecific:     []string{"e"},
	}
	union := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true}

	rng := rand.New(rand.NewSource(42))
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		kw := SelectKeyword(strategy, rng)
		require.True(t, union[kw], "keyword %q not in strategy", kw)
		seen[kw] = true
	}

	// With >1 candidate a large sample must produce more than one value
	assert.Greater(t, len(seen), 1)
}

func TestSelectKeywordSingleCandidate(t *testing.T) {
	strategy := models.KeywordStrategy{HeadMiddle: []string{"x"}}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		assert.Equal(t, "x", SelectKeyword(strategy, rng))
	}
}

func TestBuildArticlePromptIsDeterministic(t *testing.T) {
	params := ArticleParams{
		Company: CompanyInfo{
			Name:      "Acme Inc",
			BrandName: "Acme",
			AboutText: "We make things",
			SiteURL:   "https://acme.example.com",
		},
		Profile: ProfileInfo{Name: "Tech blog", Description: "Engineering articles"},
		Strategy: models.KeywordStrategy{
			StrategyConcept: "Own the long tail",
		},
		Keyword:        "widget automation",
		PromptTemplate: "How-to article with 3 sections",
	}

	first := BuildArticlePrompt(params)
	assert.Equal(t, first, BuildArticlePrompt(params))

	assert.Contains(t, first, "Company name: Acme Inc")
	assert.Contains(t, first, "Brand name: Acme")
	assert.Contains(t, first, "SEO strategy: Own the long tail")
	assert.Contains(t, first, "widget automation")
	assert.Contains(t, first, "How-to article with 3 sections")
}

func TestBuildArticlePromptOmitsEmptyFields(t *testing.T) {
	prompt := BuildArticlePrompt(ArticleParams{
		Company: CompanyInfo{Name: "Acme Inc"},
		Profile: ProfileInfo{Name: "Blog"},
	})

	assert.NotContains(t, prompt, "Brand name:")
	assert.NotContains(t, prompt, "About:")
	assert.NotContains(t, prompt, "Site URL:")
	assert.NotContains(t, prompt, "Description:")
}

func TestParseArticle(t *testing.T) {
	article, err := ParseArticle(`{"title":"T","content":"<h2>S</h2><p>b</p>","meta_description":"m","excerpt":"e"}`)
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
	assert.Equal(t, "<h2>S</h2><p>b</p>", article.Content)
	assert.Equal(t, "m", article.MetaDescription)
	assert.Equal(t, "e", article.Excerpt)
}

func TestParseArticleToleratesCodeFence(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"content\":\"c\"}\n```"
	article, err := ParseArticle(raw)
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
}

func TestParseArticleRejectsMalformedJSON(t *testing.T) {
	_, err := ParseArticle("not json at all")
	var invalid *InvalidOutputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "not valid JSON")
}

func TestParseArticleRejectsMissingFields(t *testing.T) {
	_, err := ParseArticle(`{"content":"c"}`)
	var invalid *InvalidOutputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "missing title")

	_, err = ParseArticle(`{"title":"T"}`)
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "missing content")
}

func TestBuildImagePromptTruncatesExcerpt(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 200) + "</p>"
	prompt := BuildImagePrompt(ImageParams{
		Title:   "My Title",
		Content: long,
		Keyword: "kw",
	})

	assert.Contains(t, prompt, "Article title: My Title")
	assert.Contains(t, prompt, "Keyword: kw")
	assert.NotContains(t, prompt, "<p>")

	// The excerpt is bounded to roughly 200 characters
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Article summary: ") {
			summary := strings.TrimPrefix(line, "Article summary: ")
			assert.LessOrEqual(t, len([]rune(summary)), 200)
			return
		}
	}
	t.Fatal("no summary line in prompt")
}
