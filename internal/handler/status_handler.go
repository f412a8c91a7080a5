package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tickerbrief/internal/quota"
)

// StatusHandler exposes quota consumption and liveness. The quota view makes
// a degraded afternoon explainable: you can see which budget ran out.
type StatusHandler struct {
	tracker    *quota.Tracker
	repository TickerStore
}

func NewStatusHandler(tracker *quota.Tracker, repository TickerStore) *StatusHandler {
	return &StatusHandler{tracker: tracker, repository: repository}
}

func (h *StatusHandler) GetQuota(c *gin.Context) {
	c.JSON(http.StatusOK, QuotaStatusResponse{Providers: h.tracker.Usage()})
}

func (h *StatusHandler) GetHealth(c *gin.Context) {
	if _, err := h.repository.List(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
