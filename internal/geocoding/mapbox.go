package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
)

// MapboxClient proxies forward-geocoding searches. The route hands the
// upstream JSON through untouched, so the client returns a RawMessage.
type MapboxClient struct {
	logger  *logrus.Logger
	baseURL string
	token   string
	client  *http.Client
}

func NewMapboxClient(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *MapboxClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &MapboxClient{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// SearchForward runs a place-name search scoped to Vietnam.
func (m *MapboxClient) SearchForward(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{
		"access_token": []string{m.token},
		"country":      []string{"vn"},
		"limit":        []string{"5"},
		"language":     []string{"vi"},
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		m.baseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.WithError(err).Error("Mapbox search request failed")
		return nil, apperrors.UpstreamWrap(0, err, "search request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read search response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "search provider returned status %d", resp.StatusCode)
	}

	return json.RawMessage(body), nil
}
