package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tickerbrief/internal/cache"
	"tickerbrief/internal/model"
	"tickerbrief/internal/orchestrator"
)

type TickerStore interface {
	List() ([]model.Ticker, error)
	Exists(symbol string) (bool, error)
	Add(symbol string) (bool, error)
	Remove(symbol string) error
}

type TickerHandler struct {
	repository TickerStore
	store      cache.Store
}

func NewTickerHandler(repository TickerStore, store cache.Store) *TickerHandler {
	return &TickerHandler{repository: repository, store: store}
}

func (h *TickerHandler) GetTickers(c *gin.Context) {
	tickers, err := h.repository.List()
	if err != nil {
		slog.Error("error listing tickers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := TickerListResponse{
		Tickers: []TickerResponse{},
		Total:   len(tickers),
	}
	for _, t := range tickers {
		res.Tickers = append(res.Tickers, TickerResponse{
			Symbol:  t.Symbol,
			AddedAt: t.AddedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *TickerHandler) AddTicker(c *gin.Context) {
	var req AddTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if !orchestrator.ValidTicker(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		return
	}

	added, err := h.repository.Add(symbol)
	if err != nil {
		slog.Error("error adding ticker", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !added {
		c.JSON(http.StatusConflict, gin.H{"error": "Ticker already on watchlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"symbol": symbol})
}

// RemoveTicker deletes the ticker's rows and cache entries together so a
// removed symbol leaves nothing behind.
func (h *TickerHandler) RemoveTicker(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !orchestrator.ValidTicker(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		return
	}

	exists, err := h.repository.Exists(symbol)
	if err != nil {
		slog.Error("error checking ticker", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticker not found"})
		return
	}

	if err := h.repository.Remove(symbol); err != nil {
		slog.Error("error removing ticker", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.store.InvalidateAll(c.Request.Context(), symbol); err != nil {
		slog.Warn("cache cleanup failed after removal", "ticker", symbol, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "removed": true})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsed
}
