package predictor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkmetrics/queuecast/pkg/common"
)

// maxBatchSize bounds one batch call; larger batches should page.
const maxBatchSize = 500

// Handler handles HTTP requests for wait-time predictions
type Handler struct {
	service *Service
}

// NewHandler creates a new prediction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Predict returns the wait-time prediction for one attraction/time query
// POST /api/v1/predictions
func (h *Handler) Predict(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Predict(c.Request.Context(), &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to generate prediction")
		return
	}

	common.SuccessResponse(c, result)
}

// PredictBatch predicts a list of queries in one call
// POST /api/v1/predictions/batch
func (h *Handler) PredictBatch(c *gin.Context) {
	var reqs []Request
	if err := c.ShouldBindJSON(&reqs); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(reqs) == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "empty batch")
		return
	}
	if len(reqs) > maxBatchSize {
		common.ErrorResponse(c, http.StatusBadRequest, "batch too large")
		return
	}

	results, err := h.service.PredictBatch(c.Request.Context(), reqs)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to generate predictions")
		return
	}

	common.SuccessResponse(c, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// Profile evaluates one query across the park's operating hours
// POST /api/v1/predictions/profile
func (h *Handler) Profile(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.HourlyProfile(c.Request.Context(), &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to generate profile")
		return
	}

	common.SuccessResponse(c, gin.H{
		"atraccion": req.Attraction,
		"fecha":     req.Date,
		"profile":   profile,
	})
}

// ListAttractions lists the attractions known to the historical dataset
// GET /api/v1/park/attractions
func (h *Handler) ListAttractions(c *gin.Context) {
	attractions := h.service.Attractions()
	common.SuccessResponse(c, gin.H{
		"attractions": attractions,
		"count":       len(attractions),
	})
}

// ListZones lists the park zones known to the historical dataset
// GET /api/v1/park/zones
func (h *Handler) ListZones(c *gin.Context) {
	zones := h.service.Zones()
	common.SuccessResponse(c, gin.H{
		"zones": zones,
		"count": len(zones),
	})
}

// GetZone resolves the zone of one attraction
// GET /api/v1/park/attractions/:attraction/zone
func (h *Handler) GetZone(c *gin.Context) {
	attraction := c.Param("attraction")
	zone := h.service.ZoneFor(attraction)
	if zone == "" {
		common.ErrorResponse(c, http.StatusNotFound, "unknown attraction")
		return
	}
	common.SuccessResponse(c, gin.H{
		"atraccion": attraction,
		"zona":      zone,
	})
}

// RegisterRoutes registers prediction routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	predictions := r.Group("/api/v1/predictions")
	{
		predictions.POST("", h.Predict)
		predictions.POST("/batch", h.PredictBatch)
		predictions.POST("/profile", h.Profile)
	}

	park := r.Group("/api/v1/park")
	{
		park.GET("/attractions", h.ListAttractions)
		park.GET("/attractions/:attraction/zone", h.GetZone)
		park.GET("/zones", h.ListZones)
	}
}
