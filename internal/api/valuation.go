package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
	"landradar/server/internal/valuation"
)

type valuationRequest struct {
	Payload   *models.ValuationPayload `json:"payload"`
	AuthToken string                   `json:"auth_token"`
}

// RequestValuation forwards a bearer-authenticated valuation request and
// hands the upstream answer (or its status) straight back.
func (h *Handler) RequestValuation(c *gin.Context) {
	var req valuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if req.Payload == nil || req.AuthToken == "" {
		h.respondError(c, apperrors.InvalidParameter("payload and auth_token are required"))
		return
	}

	raw, err := h.valuation.RequestValuation(c.Request.Context(), *req.Payload, req.AuthToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

type createPayloadRequest struct {
	AddressInfo     *models.AddressInfo    `json:"address_info"`
	PropertyDetails models.PropertyDetails `json:"property_details"`
}

// CreatePayload builds a valuation payload from address and property detail
// input. Only a missing address is an error.
func (h *Handler) CreatePayload(c *gin.Context) {
	var req createPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if req.AddressInfo == nil {
		h.respondError(c, apperrors.InvalidParameter("address_info is required"))
		return
	}

	payload := valuation.BuildPayload(*req.AddressInfo, req.PropertyDetails)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

type radarRequest struct {
	Payload *models.ValuationPayload `json:"payload"`
}

// RadarScore asks the model for the five-axis property rating.
func (h *Handler) RadarScore(c *gin.Context) {
	var req radarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if req.Payload == nil {
		h.respondError(c, apperrors.InvalidParameter("payload is required"))
		return
	}

	score, err := h.flows.ScoreRadar(c.Request.Context(), *req.Payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": score})
}

type summaryRequest struct {
	Payload    *models.ValuationPayload `json:"payload"`
	AreaPrices models.PriceTable        `json:"area_prices"`
}

// ValuationSummary asks the model for the readable valuation range.
func (h *Handler) ValuationSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidParameter("invalid request body"))
		return
	}
	if req.Payload == nil {
		h.respondError(c, apperrors.InvalidParameter("payload is required"))
		return
	}

	summary, err := h.flows.SummarizeValuation(c.Request.Context(), *req.Payload, req.AreaPrices)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
