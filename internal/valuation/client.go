package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
)

// Client forwards bearer-authenticated valuation requests to the valuation
// backend. The auth token is supplied per request by the caller, not from
// configuration.
type Client struct {
	logger  *logrus.Logger
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// RequestValuation submits the payload and hands back the raw upstream JSON.
// A non-2xx upstream answer surfaces as an UpstreamError carrying the
// upstream status, which the route forwards unchanged.
func (c *Client) RequestValuation(ctx context.Context, payload models.ValuationPayload, authToken string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/valuation/v1/estimate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Valuation request failed")
		return nil, apperrors.UpstreamWrap(0, err, "valuation request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read valuation response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"trans_id": payload.TransID,
		}).Error("Valuation backend rejected request")
		return nil, apperrors.Upstream(resp.StatusCode, "valuation backend returned status %d", resp.StatusCode)
	}

	return json.RawMessage(respBody), nil
}
