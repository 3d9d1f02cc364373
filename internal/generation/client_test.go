package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yufyaj/seo-writer/pkg/retry"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		APIKey:     "test-key",
		TextModel:  "text-model",
		ImageModel: "image-model",
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     4 * time.Millisecond,
		},
	}, zap.NewNop())
}

func textReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateArticle(t *testing.T) {
	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/models/text-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		json.NewEncoder(w).Encode(textReply(`{"title":"T","content":"<h2>S</h2>"}`))
	})

	article, err := client.GenerateArticle(context.Background(), ArticleParams{
		Company: CompanyInfo{Name: "Acme"},
		Profile: ProfileInfo{Name: "Blog"},
		Keyword: "kw",
	})

	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
	assert.Equal(t, 1, calls)
}

func TestGenerateArticleRetriesRateLimit(t *testing.T) {
	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(textReply(`{"title":"T","content":"c"}`))
	})

	article, err := client.GenerateArticle(context.Background(), ArticleParams{})
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
	assert.Equal(t, 2, calls)
}

func TestGenerateArticleEmptyReply(t *testing.T) {
	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateArticle(context.Background(), ArticleParams{})
	require.ErrorIs(t, err, ErrEmptyOutput)
	// An empty reply is not a transient signal, so no retry happens
	assert.Equal(t, 1, calls)
}

func TestGenerateArticleInvalidShape(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textReply(`{"headline":"wrong shape"}`))
	})

	_, err := client.GenerateArticle(context.Background(), ArticleParams{})
	var invalid *InvalidOutputError
	require.ErrorAs(t, err, &invalid)
}

func TestGenerateImage(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/image-model:generateContent", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		genCfg := req["generationConfig"].(map[string]any)
		assert.Equal(t, "16:9", genCfg["imageConfig"].(map[string]any)["aspectRatio"])

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"inlineData": map[string]any{
						"mimeType": "image/png",
						"data":     base64.StdEncoding.EncodeToString(payload),
					}},
				}}},
			},
		})
	})

	image, err := client.GenerateImage(context.Background(), ImageParams{
		Title:   "T",
		Content: "<p>body</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, payload, image.Data)
	assert.Equal(t, "image/png", image.MimeType)
}

func TestGenerateImageNoPayload(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textReply("just text, no image"))
	})

	_, err := client.GenerateImage(context.Background(), ImageParams{Title: "T"})
	require.ErrorIs(t, err, ErrNoImage)
}
