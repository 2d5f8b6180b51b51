package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
)

// Client speaks the chat-completions protocol against the model proxy. The
// model is an external collaborator: this package owns only the
// request/response contract, never the reasoning.
type Client struct {
	logger     *logrus.Logger
	apiURL     string
	apiKey     string
	model      string
	enabled    bool
	httpClient *http.Client
}

func NewClient(apiURL, apiKey, model string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Client{
		logger:     logger,
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		enabled:    apiURL != "" && apiKey != "",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether proxy credentials were configured.
func (c *Client) Enabled() bool { return c.enabled }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// CompleteJSON sends one system+user exchange and returns the model's reply,
// requested in JSON mode so flows can unmarshal it against their schemas.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, maxTokens int) ([]byte, error) {
	if !c.enabled {
		return nil, apperrors.Upstream(http.StatusServiceUnavailable, "analysis model is not configured")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:      maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Model proxy request failed")
		return nil, apperrors.UpstreamWrap(0, err, "model request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Model proxy returned non-200")
		return nil, apperrors.Upstream(resp.StatusCode, "model proxy returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse model response")
	}

	if len(parsed.Choices) == 0 {
		return nil, apperrors.Upstream(resp.StatusCode, "model returned no choices")
	}

	return []byte(parsed.Choices[0].Message.Content), nil
}
