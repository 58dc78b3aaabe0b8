package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
)

const maxErrorBody = 4096

// Client calls the translation backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Translate posts to /translate. The body is parsed whatever the status code;
// a body without translated_text is a failed translation.
func (c *Client) Translate(ctx context.Context, req domain.TranslateRequest) entities.TranslationResult {
	resp, err := c.post(ctx, "/translate", req)
	if err != nil {
		return entities.TranslationResult{Err: err}
	}
	defer resp.Body.Close()

	var body domain.TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entities.TranslationResult{Err: fmt.Errorf("decode translate response: %w", err)}
	}

	if body.TranslatedText == "" {
		c.logger.Warn("Translation response without translated text",
			zap.Int("status", resp.StatusCode),
			zap.String("error", body.Error))
		return entities.TranslationResult{Failed: true}
	}

	return entities.TranslationResult{TranslatedText: body.TranslatedText}
}

// Speak posts to /speak and reads the whole audio artifact
func (c *Client) Speak(ctx context.Context, req domain.SpeakRequest) entities.SynthesisResult {
	resp, err := c.post(ctx, "/speak", req)
	if err != nil {
		return entities.SynthesisResult{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return entities.SynthesisResult{Err: fmt.Errorf("speak returned %d: %s", resp.StatusCode, strings.TrimSpace(string(errorBody)))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.SynthesisResult{Err: fmt.Errorf("read audio: %w", err)}
	}
	if len(data) == 0 {
		return entities.SynthesisResult{Err: errors.New("speak returned no audio")}
	}

	return entities.SynthesisResult{Artifact: entities.AudioArtifact{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}}
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
