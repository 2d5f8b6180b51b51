package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landradar/server/internal/apperrors"
)

const tileCacheControl = "public, max-age=86400"

// MapTileProxy streams a raster tile from a whitelisted host.
func (h *Handler) MapTileProxy(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		h.respondError(c, apperrors.InvalidParameter("missing required parameter \"url\""))
		return
	}

	tile, err := h.tiles.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", tileCacheControl)
	c.Data(http.StatusOK, tile.ContentType, tile.Body)
}

type detailLayerRequest struct {
	URL string `json:"url"`
}

// DetailLayer fetches a planning detail-layer tile named in the POST body.
func (h *Handler) DetailLayer(c *gin.Context) {
	var req detailLayerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		h.respondError(c, apperrors.InvalidParameter("url is required"))
		return
	}

	tile, err := h.tiles.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", tileCacheControl)
	c.Data(http.StatusOK, tile.ContentType, tile.Body)
}
