package geocoding

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

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
)

// GeoapifyClient resolves coordinates into structured address components.
type GeoapifyClient struct {
	logger  *logrus.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGeoapifyClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *GeoapifyClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &GeoapifyClient{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type geoapifyReverseResponse struct {
	Features []struct {
		Properties struct {
			City      string  `json:"city"`
			County    string  `json:"county"`
			District  string  `json:"district"`
			Suburb    string  `json:"suburb"`
			Formatted string  `json:"formatted"`
			Lat       float64 `json:"lat"`
			Lon       float64 `json:"lon"`
		} `json:"properties"`
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
		Bbox []float64 `json:"bbox"`
	} `json:"features"`
}

// featurePolygon extracts the outer ring of a Polygon geometry. Points and
// anything else yield nil.
func featurePolygon(geometryType string, coordinates json.RawMessage) [][]float64 {
	if geometryType != "Polygon" || len(coordinates) == 0 {
		return nil
	}

	var rings [][][]float64
	if err := json.Unmarshal(coordinates, &rings); err != nil || len(rings) == 0 {
		return nil
	}

	return rings[0]
}

// ResolveAddress reverse-geocodes a point into an AddressResolution. An empty
// feature list maps to NoResults, which the location route turns into a 404.
func (g *GeoapifyClient) ResolveAddress(ctx context.Context, lat, lng float64) (*models.AddressResolution, error) {
	params := url.Values{
		"lat":    []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    []string{strconv.FormatFloat(lng, 'f', -1, 64)},
		"apiKey": []string{g.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/geocode/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Error("Geoapify reverse geocode request failed")
		return nil, apperrors.UpstreamWrap(0, err, "location request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read location response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "location provider returned status %d", resp.StatusCode)
	}

	var result geoapifyReverseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse location response")
	}

	if len(result.Features) == 0 {
		return nil, apperrors.NoResults("no address features for %f,%f", lat, lng)
	}

	feature := result.Features[0]
	district := feature.Properties.District
	if district == "" {
		district = feature.Properties.County
	}

	resolution := &models.AddressResolution{
		City:             feature.Properties.City,
		District:         district,
		Ward:             feature.Properties.Suburb,
		FormattedAddress: feature.Properties.Formatted,
		Coordinates: models.GeoPoint{
			Latitude:  feature.Properties.Lat,
			Longitude: feature.Properties.Lon,
		},
	}

	if len(feature.Bbox) == 4 {
		bound := orb.Bound{
			Min: orb.Point{feature.Bbox[0], feature.Bbox[1]},
			Max: orb.Point{feature.Bbox[2], feature.Bbox[3]},
		}
		resolution.BoundingBox = []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}
	}

	resolution.Polygon = featurePolygon(feature.Geometry.Type, feature.Geometry.Coordinates)

	g.logger.WithFields(logrus.Fields{
		"latitude":  lat,
		"longitude": lng,
		"city":      resolution.City,
		"district":  resolution.District,
	}).Info("Resolved address")

	return resolution, nil
}
