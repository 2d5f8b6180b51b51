package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landradar/server/config"
)

type countingUpstream struct {
	server *httptest.Server
	hits   atomic.Int64
}

func newCountingUpstream(handler http.HandlerFunc) *countingUpstream {
	upstream := &countingUpstream{}
	upstream.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.hits.Add(1)
		if handler != nil {
			handler(w, r)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	return upstream
}

func testRouter(t *testing.T, upstream *countingUpstream) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GoongBaseURL:           upstream.server.URL,
		GeoapifyURL:            upstream.server.URL,
		MapboxBaseURL:          upstream.server.URL,
		CafelandBaseURL:        upstream.server.URL,
		GulandServerURL:        upstream.server.URL,
		ValuationBaseURL:       upstream.server.URL,
		UpstreamTimeoutSeconds: 2,
		LLMTimeoutSeconds:      2,
	}

	router := gin.New()
	SetupRoutes(router, cfg, nil)
	return router
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestNonNumericCoordinatesRejectedBeforeUpstream(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	targets := []string{
		"/api/area-prices?lat=abc&lng=105.8",
		"/api/area-prices?lat=21.0&lng=",
		"/api/utilities?lat=NaN&lng=105.8",
		"/api/utilities?lat=21.0",
		"/api/location?latitude=21.0&longitude=oops",
		"/api/guland-proxy/check-plan?lat=x&lng=1&lat_ne=1&lng_ne=1&lat_sw=1&lng_sw=1",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			recorder := doRequest(router, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"success":false`)
		})
	}

	assert.Zero(t, upstream.hits.Load(), "malformed input must not reach any upstream")
}

func TestGetAreaPrices_EmptySuggestions(t *testing.T) {
	upstream := newCountingUpstream(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/Geocode"):
			fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Hàng Bài, Quận Hoàn Kiếm, Hà Nội"}]}`)
		default:
			fmt.Fprint(w, `{"data":[]}`)
		}
	})
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodGet, "/api/area-prices?lat=21.0285&lng=105.8542", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true,"data":{}}`, recorder.Body.String())
}

func TestGetPriceTrend_AlwaysOKForWellFormedInput(t *testing.T) {
	upstream := newCountingUpstream(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodGet, "/api/price-trend?city=ha-noi&district=dong-da&category=biet_thu", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":false`)
	assert.Contains(t, recorder.Body.String(), `"fallback":false`)

	// Missing district is the only 400 case.
	recorder = doRequest(router, http.MethodGet, "/api/price-trend?city=ha-noi", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetLocation_NotFoundWhenProviderHasNoFeatures(t *testing.T) {
	upstream := newCountingUpstream(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[]}`)
	})
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodGet, "/api/location?latitude=21.0&longitude=105.8", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestMapboxSearch_RequiresQuery(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodGet, "/api/mapbox-search?q=", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, upstream.hits.Load())
}

func TestCreatePayload(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	t.Run("Missing address_info", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, "/api/create-payload", `{"property_details":{}}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Defaults applied for omitted fields", func(t *testing.T) {
		body := `{"address_info":{"city":"Hà Nội","district":"Đống Đa","ward":"Láng Hạ","detail":"12 Láng Hạ","location":{"latitude":21.0167,"longitude":105.8108}}}`
		recorder := doRequest(router, http.MethodPost, "/api/create-payload", body)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"type":"town_house"`)
		assert.Contains(t, recorder.Body.String(), `"legal":"pink_book"`)
	})

	t.Run("Caller values win", func(t *testing.T) {
		body := `{"address_info":{"city":"Hà Nội","location":{"latitude":21.0,"longitude":105.8}},"property_details":{"type":"villa","legal":"red_book"}}`
		recorder := doRequest(router, http.MethodPost, "/api/create-payload", body)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"type":"villa"`)
		assert.Contains(t, recorder.Body.String(), `"legal":"red_book"`)
	})

	assert.Zero(t, upstream.hits.Load(), "payload building is local")
}

func TestValuation_RequiresPayloadAndToken(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodPost, "/api/valuation", `{"payload":{"type":"town_house"}}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(router, http.MethodPost, "/api/valuation", `{"auth_token":"tok"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	assert.Zero(t, upstream.hits.Load())
}

func TestGulandPlanning_RequiredFields(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodPost, "/api/guland-proxy/planning", `{"marker_lat":21.0,"marker_lng":105.8}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, upstream.hits.Load())

	recorder = doRequest(router, http.MethodPost, "/api/guland-proxy/planning", `{"marker_lat":21.0,"marker_lng":105.8,"province_id":1}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1), upstream.hits.Load())
}

func TestPlanningAnalysis_RejectsIncompleteShapes(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	for _, body := range []string{`{}`, `{"lat":21.0}`, `{"imagePath":"/tmp/plan.png"}`} {
		recorder := doRequest(router, http.MethodPost, "/api/planning-analysis", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body %s", body)
	}
}

func TestMapTileProxy_RejectsUnlistedHost(t *testing.T) {
	upstream := newCountingUpstream(nil)
	defer upstream.server.Close()
	router := testRouter(t, upstream)

	recorder := doRequest(router, http.MethodGet, "/api/map-tile-proxy?url=https://evil.example.com/tile.png", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, upstream.hits.Load())
}
