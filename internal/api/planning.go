package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/guland"
	"landradar/server/internal/llm"
	"landradar/server/internal/models"
)

type planningRequest struct {
	MarkerLat  *float64 `json:"marker_lat"`
	MarkerLng  *float64 `json:"marker_lng"`
	ProvinceID *int     `json:"province_id"`
	DistrictID int      `json:"district_id"`
	WardID     int      `json:"ward_id"`
	MapType    string   `json:"map_type"`
	Zoom       int      `json:"zoom"`
}

// GulandPlanning proxies a planning-map query.
func (h *Handler) GulandPlanning(c *gin.Context) {
	var req planningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if req.MarkerLat == nil || req.MarkerLng == nil || req.ProvinceID == nil {
		h.respondError(c, apperrors.InvalidParameter("marker_lat, marker_lng and province_id are required"))
		return
	}

	raw, err := h.guland.Planning(c.Request.Context(), models.PlanningQuery{
		MarkerLat:  *req.MarkerLat,
		MarkerLng:  *req.MarkerLng,
		ProvinceID: *req.ProvinceID,
		DistrictID: req.DistrictID,
		WardID:     req.WardID,
		MapType:    req.MapType,
		Zoom:       req.Zoom,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

var checkPlanKeys = []string{"lat", "lng", "lat_ne", "lng_ne", "lat_sw", "lng_sw"}

// GulandCheckPlan proxies a viewport plan check. All six bounds must be
// finite numbers and form a proper box before anything leaves the process.
func (h *Handler) GulandCheckPlan(c *gin.Context) {
	values := make([]float64, len(checkPlanKeys))
	for i, key := range checkPlanKeys {
		value, err := parseCoordinate(c.Query(key), key)
		if err != nil {
			h.respondError(c, err)
			return
		}
		values[i] = value
	}

	extra := c.Request.URL.Query()
	for _, key := range checkPlanKeys {
		extra.Del(key)
	}

	params := guland.CheckPlanParams{
		Lat:   values[0],
		Lng:   values[1],
		LatNE: values[2],
		LngNE: values[3],
		LatSW: values[4],
		LngSW: values[5],
		Extra: extra,
	}
	if err := params.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	raw, err := h.guland.CheckPlan(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

type gulandGeocodingRequest struct {
	Lat  *float64 `json:"lat" form:"lat"`
	Lng  *float64 `json:"lng" form:"lng"`
	Path string   `json:"path" form:"path"`
}

// GulandGeocoding proxies the planning backend's geocoder. Accepts GET query
// parameters or a POST JSON body.
func (h *Handler) GulandGeocoding(c *gin.Context) {
	var req gulandGeocodingRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, apperrors.InvalidParameter("invalid request body"))
			return
		}
	} else {
		lat, err := parseCoordinate(c.Query("lat"), "lat")
		if err != nil {
			h.respondError(c, err)
			return
		}
		lng, err := parseCoordinate(c.Query("lng"), "lng")
		if err != nil {
			h.respondError(c, err)
			return
		}
		req.Lat, req.Lng, req.Path = &lat, &lng, c.Query("path")
	}

	if req.Lat == nil || req.Lng == nil || req.Path == "" {
		h.respondError(c, apperrors.InvalidParameter("lat, lng and path are required"))
		return
	}

	raw, err := h.guland.Geocoding(c.Request.Context(), *req.Lat, *req.Lng, req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// GulandRoadPoints passes the query through untouched.
func (h *Handler) GulandRoadPoints(c *gin.Context) {
	raw, err := h.guland.RoadPoints(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// GulandHealth reports backend reachability.
func (h *Handler) GulandHealth(c *gin.Context) {
	raw, err := h.guland.Health(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// GulandRefreshToken requests a fresh backend session token.
func (h *Handler) GulandRefreshToken(c *gin.Context) {
	raw, err := h.guland.RefreshToken(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// GulandPricing translates simplified params into a DataTables query.
// Accepts GET query parameters or a POST JSON body.
func (h *Handler) GulandPricing(c *gin.Context) {
	var params guland.PricingParams
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&params)
	} else {
		err = c.ShouldBindQuery(&params)
	}
	if err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid pricing parameters"))
		return
	}

	result, err := h.guland.Pricing(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PlanningAnalysis runs the planning-impact model flow. The body carries
// either a coordinate pair or a planning image with land info.
func (h *Handler) PlanningAnalysis(c *gin.Context) {
	var input llm.PlanningAnalysisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if err := input.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	// Enrich the coordinate shape with a resolved address when possible; a
	// failed lookup degrades the prompt, not the request.
	address := ""
	if input.Lat != nil && input.Lng != nil {
		if resolution, err := h.geoapify.ResolveAddress(c.Request.Context(), *input.Lat, *input.Lng); err == nil {
			address = resolution.FormattedAddress
		} else {
			h.logger.WithError(err).Warn("Address enrichment for planning analysis failed")
		}
	}

	analysis, err := h.flows.AnalyzePlanning(c.Request.Context(), input, address)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": analysis})
}
