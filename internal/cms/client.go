// Package cms is the stateless protocol client for the destination CMS
// (WordPress REST API shaped). One client is built per job from the owning
// company's connection settings.
package cms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL     string
	Username    string
	AppPassword string
	Timeout     time.Duration
}

// APIError is any non-2xx response from the CMS. Message carries the CMS
// error body's message field when one is present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	authHeader string
	logger     *zap.Logger
	client     *http.Client
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.AppPassword))

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Basic " + credentials,
		logger:     logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type CreatePostParams struct {
	Title         string
	Content       string
	Status        string
	Slug          string
	Categories    []int
	FeaturedMedia *int64
	Excerpt       string
}

type Post struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TestConnection authenticates against the CMS and reports reachability.
// It never returns an error; any failure reads as false.
func (c *Client) TestConnection(ctx context.Context) bool {
	var me struct {
		ID int64 `json:"id"`
	}
	if err := c.request(ctx, "GET", "/users/me", nil, &me); err != nil {
		c.logger.Debug("CMS connection test failed", zap.Error(err))
		return false
	}
	return true
}

// CreatePost creates a content item on the CMS.
func (c *Client) CreatePost(ctx context.Context, params CreatePostParams) (*Post, error) {
	body := map[string]any{
		"title":   params.Title,
		"content": params.Content,
		"status":  params.Status,
	}
	if params.Slug != "" {
		body["slug"] = params.Slug
	}
	if len(params.Categories) > 0 {
		body["categories"] = params.Categories
	}
	if params.FeaturedMedia != nil {
		body["featured_media"] = *params.FeaturedMedia
	}
	if params.Excerpt != "" {
		body["excerpt"] = params.Excerpt
	}

	var post Post
	if err := c.request(ctx, "POST", "/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UploadMedia uploads binary content. When altText is given, a second
// best-effort call sets it; failure of that call does not undo the upload.
func (c *Client) UploadMedia(ctx context.Context, data []byte, filename, mimeType, altText string) (*Media, error) {
	url := c.baseURL + "/wp-json/wp/v2/media"

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp, "media upload")
	}

	var media Media
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("failed to decode media response: %w", err)
	}

	if altText != "" {
		if err := c.updateMediaAltText(ctx, media.ID, altText); err != nil {
			c.logger.Warn("Failed to set media alt text",
				zap.Int64("media_id", media.ID),
				zap.Error(err))
		}
	}

	return &media, nil
}

// Categories lists the CMS categories, used by the management layer when
// binding a profile to a destination category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.request(ctx, "GET", "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) updateMediaAltText(ctx context.Context, mediaID int64, altText string) error {
	body := map[string]any{"alt_text": altText}
	return c.request(ctx, "POST", fmt.Sprintf("/media/%d", mediaID), body, nil)
}

func (c *Client) request(ctx context.Context, method, endpoint string, body any, out any) error {
	url := c.baseURL + "/wp-json/wp/v2" + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp, "API")
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// apiError extracts the CMS error message from the response body when
// present, falling back to a generic message carrying the status code.
func apiError(resp *http.Response, operation string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("CMS %s error: %d", operation, resp.StatusCode),
	}

	var errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
		apiErr.Message = errBody.Message
	}

	return apiErr
}
