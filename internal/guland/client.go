package guland

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

// Client is a thin proxy onto the Guland planning backend. It reshapes
// query parameters and passes the upstream JSON through without
// interpretation.
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

// CheckPlanParams are the coordinates and viewport corners for a plan check.
type CheckPlanParams struct {
	Lat   float64
	Lng   float64
	LatNE float64
	LngNE float64
	LatSW float64
	LngSW float64
	Extra url.Values
}

// Bound returns the viewport as an orb bound (south-west min, north-east
// max).
func (p CheckPlanParams) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{p.LngSW, p.LatSW},
		Max: orb.Point{p.LngNE, p.LatNE},
	}
}

// Validate rejects degenerate viewports. The marker itself is passed through
// opaquely: it routinely falls outside the viewport after the user pans the
// map, and the backend decides what that means.
func (p CheckPlanParams) Validate() error {
	if p.Bound().IsEmpty() {
		return apperrors.InvalidParameter("bounding box corners are not ordered south-west to north-east")
	}
	return nil
}

func (c *Client) do(req *http.Request, what string) (json.RawMessage, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", what).Error("Guland request failed")
		return nil, apperrors.UpstreamWrap(0, err, what+" request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read "+what+" response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Upstream(resp.StatusCode, "%s endpoint returned status %d", what, resp.StatusCode)
	}

	return json.RawMessage(body), nil
}

// Planning posts a form-encoded planning-map query.
func (c *Client) Planning(ctx context.Context, query models.PlanningQuery) (json.RawMessage, error) {
	form := url.Values{
		"marker_lat":  []string{strconv.FormatFloat(query.MarkerLat, 'f', -1, 64)},
		"marker_lng":  []string{strconv.FormatFloat(query.MarkerLng, 'f', -1, 64)},
		"province_id": []string{strconv.Itoa(query.ProvinceID)},
	}
	if query.DistrictID != 0 {
		form.Set("district_id", strconv.Itoa(query.DistrictID))
	}
	if query.WardID != 0 {
		form.Set("ward_id", strconv.Itoa(query.WardID))
	}
	if query.MapType != "" {
		form.Set("map_type", query.MapType)
	}
	if query.Zoom != 0 {
		form.Set("zoom", strconv.Itoa(query.Zoom))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/plan/get-plan", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, "planning")
}

// CheckPlan queries which plan layers cover the marker's viewport.
func (c *Client) CheckPlan(ctx context.Context, params CheckPlanParams) (json.RawMessage, error) {
	values := url.Values{}
	for key, vals := range params.Extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("lat", strconv.FormatFloat(params.Lat, 'f', -1, 64))
	values.Set("lng", strconv.FormatFloat(params.Lng, 'f', -1, 64))
	values.Set("lat_ne", strconv.FormatFloat(params.LatNE, 'f', -1, 64))
	values.Set("lng_ne", strconv.FormatFloat(params.LngNE, 'f', -1, 64))
	values.Set("lat_sw", strconv.FormatFloat(params.LatSW, 'f', -1, 64))
	values.Set("lng_sw", strconv.FormatFloat(params.LngSW, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/plan/check-plan?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, "check-plan")
}

// Geocoding proxies the backend's own geocoder, which needs the request path
// of the map view alongside the coordinates.
func (c *Client) Geocoding(ctx context.Context, lat, lng float64, path string) (json.RawMessage, error) {
	values := url.Values{
		"lat":  []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng":  []string{strconv.FormatFloat(lng, 'f', -1, 64)},
		"path": []string{path},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/geocoding?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, "geocoding")
}

// RoadPoints passes the caller's query through untouched.
func (c *Client) RoadPoints(ctx context.Context, query url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/road-points?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, "road-points")
}

// Health checks backend reachability.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, "health")
}

// RefreshToken asks the backend for a fresh session token. The token is
// handed back to the caller, never stored server-side.
func (c *Client) RefreshToken(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/refresh-token", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, "refresh-token")
}
