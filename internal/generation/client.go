// Package generation is the client for the generative content provider. It
// produces structured article text and section images, retrying transient
// failures with bounded backoff.
package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yufyaj/seo-writer/pkg/retry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	Retry      retry.Config
	// BaseURL overrides the production API endpoint, used by tests.
	BaseURL string
}

type Client struct {
	config Config
	logger *zap.Logger
	client *http.Client
	rng    *rand.Rand
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	tr := &http.Transport{
		IdleConnTimeout:       120 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}
	return &Client{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Transport: tr,
			Timeout:   cfg.Timeout,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the keyword-selection source, used by tests for a
// deterministic draw.
func (c *Client) SetRand(rng *rand.Rand) {
	c.rng = rng
}

type (
	generateRequest struct {
		Contents         []requestContent  `json:"contents"`
		GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	}

	requestContent struct {
		Parts []requestPart `json:"parts"`
	}

	requestPart struct {
		Text string `json:"text"`
	}

	generationConfig struct {
		ResponseMimeType   string       `json:"responseMimeType,omitempty"`
		ResponseModalities []string     `json:"responseModalities,omitempty"`
		ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
	}

	imageConfig struct {
		AspectRatio string `json:"aspectRatio"`
	}

	generateResponse struct {
		Candidates []candidate `json:"candidates"`
	}

	candidate struct {
		Content candidateContent `json:"content"`
	}

	candidateContent struct {
		Parts []responsePart `json:"parts"`
	}

	responsePart struct {
		Text       string      `json:"text,omitempty"`
		InlineData *inlineData `json:"inlineData,omitempty"`
	}

	inlineData struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	}
)

func (c *Client) generateContent(model string, reqBody generateRequest) (*generateResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.config.BaseURL, model)

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}

// firstText returns the concatenated text parts of the first candidate.
func (r *generateResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for _, part := range r.Candidates[0].Content.Parts {
		buf.WriteString(part.Text)
	}
	return buf.String()
}
