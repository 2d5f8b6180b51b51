package utilities

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
)

// Categories is the fixed set of utility tags requested from the upstream
// service. The grouped response always uses these keys.
var Categories = []string{
	"hospital",
	"school",
	"market",
	"supermarket",
	"restaurant",
	"cafe",
	"bank",
	"park",
	"bus_station",
	"gas_station",
	"pharmacy",
	"gym",
}

// Place is one nearby utility as returned by the provider.
type Place struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Address  string          `json:"address"`
	Distance float64         `json:"distance"`
	Location models.GeoPoint `json:"location"`
}

// Grouper fetches all utility categories in one upstream call and partitions
// the flat result by category tag.
type Grouper struct {
	logger  *logrus.Logger
	baseURL string
	client  *http.Client
}

func NewGrouper(baseURL string, timeout time.Duration, logger *logrus.Logger) *Grouper {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Grouper{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type nearbyResponse struct {
	Data []Place `json:"data"`
}

// NearbyGrouped returns a map from category tag to the matching places,
// preserving the relative upstream order within each group. Every category
// key is present even when its group is empty.
func (g *Grouper) NearbyGrouped(ctx context.Context, lat, lng, distance float64, size int) (map[string][]Place, error) {
	params := url.Values{
		"lat":      []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng":      []string{strconv.FormatFloat(lng, 'f', -1, 64)},
		"distance": []string{strconv.FormatFloat(distance, 'f', -1, 64)},
		"size":     []string{strconv.Itoa(size)},
		"types":    []string{strings.Join(Categories, ",")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/places/v1/nearby?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Error("Utilities request failed")
		return nil, apperrors.UpstreamWrap(0, err, "utilities request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read utilities response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "utilities provider returned status %d", resp.StatusCode)
	}

	var result nearbyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse utilities response")
	}

	grouped := make(map[string][]Place, len(Categories))
	for _, category := range Categories {
		grouped[category] = []Place{}
	}
	for _, place := range result.Data {
		if _, known := grouped[place.Category]; !known {
			continue
		}
		grouped[place.Category] = append(grouped[place.Category], place)
	}

	g.logger.WithFields(logrus.Fields{
		"latitude":  lat,
		"longitude": lng,
		"total":     len(result.Data),
	}).Info("Grouped nearby utilities")

	return grouped, nil
}
