package api

import (
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"landradar/server/config"
	"landradar/server/internal/apperrors"
	"landradar/server/internal/areaprices"
	"landradar/server/internal/geocoding"
	"landradar/server/internal/guland"
	"landradar/server/internal/llm"
	"landradar/server/internal/pricetrend"
	"landradar/server/internal/tiles"
	"landradar/server/internal/utilities"
	"landradar/server/internal/valuation"
)

type Handler struct {
	logger     *logrus.Logger
	goong      *geocoding.GoongClient
	geoapify   *geocoding.GeoapifyClient
	mapbox     *geocoding.MapboxClient
	areaPrices *areaprices.Aggregator
	trend      *pricetrend.Fetcher
	utilities  *utilities.Grouper
	valuation  *valuation.Client
	guland     *guland.Client
	flows      *llm.Flows
	tiles      *tiles.Proxy
}

func NewHandler(cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	upstreamTimeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	llmClient := llm.NewClient(cfg.AIProxyURL, cfg.AIProxyAPIKey, cfg.AIProxyModel, llmTimeout, logger)

	return &Handler{
		logger:     logger,
		goong:      geocoding.NewGoongClient(cfg.GoongBaseURL, cfg.GoongKey, cfg.GoongCookie, upstreamTimeout, logger),
		geoapify:   geocoding.NewGeoapifyClient(cfg.GeoapifyURL, cfg.GeoapifyAPIKey, upstreamTimeout, logger),
		mapbox:     geocoding.NewMapboxClient(cfg.MapboxBaseURL, cfg.MapboxToken, upstreamTimeout, logger),
		areaPrices: areaprices.NewAggregator(cfg.CafelandBaseURL, cfg.CafelandToken, upstreamTimeout, logger),
		trend:      pricetrend.NewFetcher(cfg.CafelandBaseURL, cfg.CafelandToken, upstreamTimeout, logger),
		utilities:  utilities.NewGrouper(cfg.ValuationBaseURL, upstreamTimeout, logger),
		valuation:  valuation.NewClient(cfg.ValuationBaseURL, upstreamTimeout, logger),
		guland:     guland.NewClient(cfg.GulandServerURL, upstreamTimeout, logger),
		flows:      llm.NewFlows(llmClient),
		tiles:      tiles.NewProxy(tileHosts(cfg), upstreamTimeout, logger),
	}
}

// tileHosts derives the allowed tile hosts from the configured backends.
func tileHosts(cfg *config.Config) []string {
	hosts := []string{"mapbox.com", "goong.io"}
	if parsed, err := url.Parse(cfg.GulandServerURL); err == nil && parsed.Hostname() != "" {
		hosts = append(hosts, parsed.Hostname())
	}
	return hosts
}

// respondError translates a typed error into the JSON error envelope.
func (h *Handler) respondError(c *gin.Context, err error) {
	if appErr := apperrors.As(err); appErr != nil {
		c.JSON(appErr.HTTPStatus(), gin.H{"success": false, "error": appErr.Message})
		return
	}

	h.logger.WithError(err).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
}

// parseCoordinate rejects anything that does not parse as a finite number
// before any upstream call is attempted.
func parseCoordinate(raw, name string) (float64, error) {
	if raw == "" {
		return 0, apperrors.InvalidParameter("missing required parameter %q", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, apperrors.InvalidParameter("parameter %q must be a finite number", name)
	}
	return value, nil
}

// GetAreaPrices resolves the coordinate to a keyword and aggregates street
// prices around it. An unresolvable address yields an empty table, not an
// error.
func (h *Handler) GetAreaPrices(c *gin.Context) {
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

	keyword, err := h.goong.KeywordForLocation(c.Request.Context(), lat, lng)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNoResults) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
			return
		}
		h.respondError(c, err)
		return
	}

	table, err := h.areaPrices.AreaPrices(c.Request.Context(), keyword)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": table})
}

// GetPriceTrend always answers 200 for well-formed input; the success flag
// inside the result says whether any data exists.
func (h *Handler) GetPriceTrend(c *gin.Context) {
	city := c.Query("city")
	district := c.Query("district")
	if city == "" || district == "" {
		h.respondError(c, apperrors.InvalidParameter("city and district are required"))
		return
	}

	result := h.trend.PriceTrend(c.Request.Context(), city, district, c.Query("category"))
	c.JSON(http.StatusOK, result)
}

// GetUtilities groups nearby utilities by category.
func (h *Handler) GetUtilities(c *gin.Context) {
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

	distance := 2.0
	if raw := c.Query("distance"); raw != "" {
		if distance, err = parseCoordinate(raw, "distance"); err != nil {
			h.respondError(c, err)
			return
		}
	}

	size := 5
	if raw := c.Query("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size <= 0 {
			h.respondError(c, apperrors.InvalidParameter("parameter \"size\" must be a positive integer"))
			return
		}
	}

	grouped, err := h.utilities.NearbyGrouped(c.Request.Context(), lat, lng, distance, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": grouped})
}

// GetLocation resolves a coordinate into structured address components; 404
// when the provider has no features there.
func (h *Handler) GetLocation(c *gin.Context) {
	lat, err := parseCoordinate(c.Query("latitude"), "latitude")
	if err != nil {
		h.respondError(c, err)
		return
	}
	lng, err := parseCoordinate(c.Query("longitude"), "longitude")
	if err != nil {
		h.respondError(c, err)
		return
	}

	resolution, err := h.geoapify.ResolveAddress(c.Request.Context(), lat, lng)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resolution})
}

// MapboxSearch proxies forward geocoding.
func (h *Handler) MapboxSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.respondError(c, apperrors.InvalidParameter("missing required parameter \"q\""))
		return
	}

	raw, err := h.mapbox.SearchForward(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
