package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tickerbrief/internal/model"
	"tickerbrief/internal/orchestrator"
)

type Resolver interface {
	Resolve(ctx context.Context, symbol string, kind model.DataKind, forceRefresh bool) (*orchestrator.Result, error)
}

// DataHandler serves news, quotes and logos through the freshness policy.
// Every response carries provider and freshness labels.
type DataHandler struct {
	resolver Resolver
}

func NewDataHandler(resolver Resolver) *DataHandler {
	return &DataHandler{resolver: resolver}
}

func (h *DataHandler) GetNews(c *gin.Context) {
	h.resolve(c, model.KindNews)
}

func (h *DataHandler) GetQuote(c *gin.Context) {
	h.resolve(c, model.KindQuote)
}

func (h *DataHandler) GetLogo(c *gin.Context) {
	h.resolve(c, model.KindLogo)
}

func (h *DataHandler) resolve(c *gin.Context, kind model.DataKind) {
	symbol := strings.ToUpper(c.Param("symbol"))
	force := c.Query("refresh") == "true"

	result, err := h.resolver.Resolve(c.Request.Context(), symbol, kind, force)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrInvalidTicker):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		case errors.Is(err, orchestrator.ErrNoData):
			c.JSON(http.StatusNotFound, gin.H{"error": "No data available for ticker"})
		default:
			slog.Error("resolve failed", "ticker", symbol, "kind", kind, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream error"})
		}
		return
	}

	c.JSON(http.StatusOK, DataResponse{
		Ticker:    symbol,
		Kind:      string(kind),
		Provider:  result.Provider,
		Freshness: string(result.Freshness),
		Degraded:  result.Degraded,
		Data:      payloadData(result, kind),
	})
}

// payloadData unwraps the union so clients get the shape their kind implies
// instead of a payload envelope with three nil fields.
func payloadData(result *orchestrator.Result, kind model.DataKind) any {
	switch kind {
	case model.KindNews:
		if result.Payload.Articles == nil {
			return []model.NewsArticle{}
		}
		return result.Payload.Articles
	case model.KindQuote:
		return result.Payload.Quote
	case model.KindLogo:
		return result.Payload.Logo
	}
	return nil
}
