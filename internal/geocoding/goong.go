package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
)

// GoongClient resolves coordinates into short search keywords via the Goong
// reverse-geocoding API.
type GoongClient struct {
	logger  *logrus.Logger
	baseURL string
	apiKey  string
	cookie  string
	client  *http.Client
}

func NewGoongClient(baseURL, apiKey, cookie string, timeout time.Duration, logger *logrus.Logger) *GoongClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &GoongClient{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		cookie:  cookie,
		client:  &http.Client{Timeout: timeout},
	}
}

type goongGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode returns the provider's formatted address for a coordinate
// pair.
func (g *GoongClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{
		"latlng":  []string{fmt.Sprintf("%f,%f", lat, lng)},
		"api_key": []string{g.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/Geocode?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if g.cookie != "" {
		req.Header.Set("Cookie", g.cookie)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Error("Goong reverse geocode request failed")
		return "", apperrors.UpstreamWrap(0, err, "geocoding request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read geocoding response")
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.WithField("status", resp.StatusCode).Error("Goong reverse geocode returned non-200")
		return "", apperrors.Upstream(resp.StatusCode, "geocoding provider returned status %d", resp.StatusCode)
	}

	var result goongGeocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse geocoding response")
	}

	if result.Status != "" && result.Status != "OK" {
		return "", apperrors.Upstream(resp.StatusCode, "geocoding provider signalled status %q", result.Status)
	}

	if len(result.Results) == 0 {
		return "", apperrors.NoResults("no address found for %f,%f", lat, lng)
	}

	return result.Results[0].FormattedAddress, nil
}

// KeywordForLocation reverse-geocodes the point and reduces the address to a
// short keyword for the area-price suggestion lookup. The sentinel "N/A"
// means the address carried nothing usable; that is a degraded result, not an
// error.
func (g *GoongClient) KeywordForLocation(ctx context.Context, lat, lng float64) (string, error) {
	address, err := g.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", err
	}

	keyword := NormalizeKeyword(address)
	g.logger.WithFields(logrus.Fields{
		"address": address,
		"keyword": keyword,
	}).Info("Resolved location to search keyword")

	return keyword, nil
}

var (
	adminPrefixPattern = regexp.MustCompile(`(?i)\b(phường|quận|huyện|thị xã|thị trấn|thành phố|tỉnh|xã|tp\.?|q\.|p\.|h\.|tx\.)\s*`)
	countrySuffix      = regexp.MustCompile(`(?i),?\s*(việt nam|vietnam)\s*$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeKeyword strips administrative-level prefixes from a formatted
// Vietnamese address and keeps the leading street and district components,
// separated by single spaces. Returns "N/A" when nothing survives.
func NormalizeKeyword(address string) string {
	trimmed := countrySuffix.ReplaceAllString(strings.TrimSpace(address), "")
	if trimmed == "" {
		return "N/A"
	}

	parts := strings.Split(trimmed, ",")
	kept := make([]string, 0, 2)
	for _, part := range parts {
		cleaned := adminPrefixPattern.ReplaceAllString(part, "")
		cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
		if cleaned == "" {
			continue
		}
		kept = append(kept, cleaned)
		if len(kept) == 2 {
			break
		}
	}

	if len(kept) == 0 {
		return "N/A"
	}

	return strings.Join(kept, " ")
}
