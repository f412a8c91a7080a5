package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tickerbrief/internal/model"
	"tickerbrief/internal/orchestrator"
	"tickerbrief/internal/pipeline"
)

type SummaryStore interface {
	GetLatest(ticker string) (*model.DailySummary, error)
	GetHistory(ticker string, limit int) ([]model.DailySummary, error)
}

// SummaryRunner regenerates a ticker's summary on demand.
type SummaryRunner interface {
	ProcessTicker(ctx context.Context, symbol string, force bool) (*pipeline.Report, error)
}

type SummaryHandler struct {
	repository SummaryStore
	runner     SummaryRunner
}

func NewSummaryHandler(repository SummaryStore, runner SummaryRunner) *SummaryHandler {
	return &SummaryHandler{repository: repository, runner: runner}
}

func toSummaryResponse(s *model.DailySummary) *SummaryResponse {
	refs := make([]ArticleRef, len(s.ArticlesUsed))
	for i, r := range s.ArticlesUsed {
		refs[i] = ArticleRef{Title: r.Title, URL: r.URL, Source: r.Source}
	}
	return &SummaryResponse{
		Ticker:       s.Ticker,
		Date:         s.Date.Format("2006-01-02"),
		SummaryText:  s.SummaryText,
		WhatChanged:  s.WhatChanged,
		RiskFactors:  s.RiskFactors,
		ArticlesUsed: refs,
		ModelUsed:    s.ModelUsed,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}

func (h *SummaryHandler) GetLatestSummary(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !orchestrator.ValidTicker(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		return
	}

	summary, err := h.repository.GetLatest(symbol)
	if err != nil {
		slog.Error("error fetching latest summary", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summary available"})
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetSummaryHistory returns the recent daily timeline, newest first. The
// window defaults to a week, matching the what-changed comparison depth.
func (h *SummaryHandler) GetSummaryHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !orchestrator.ValidTicker(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		return
	}

	limit := getQueryInt("limit", 7, c)
	if limit < 1 || limit > 30 {
		limit = 7
	}

	summaries, err := h.repository.GetHistory(symbol, limit)
	if err != nil {
		slog.Error("error fetching summary history", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := SummaryHistoryResponse{
		Ticker:    symbol,
		Summaries: []SummaryResponse{},
	}
	for i := range summaries {
		res.Summaries = append(res.Summaries, *toSummaryResponse(&summaries[i]))
	}

	c.JSON(http.StatusOK, res)
}

// RefreshSummary reruns the pipeline for one ticker, bypassing caches. The
// run still respects provider and model budgets, so the result may come back
// degraded rather than failing.
func (h *SummaryHandler) RefreshSummary(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !orchestrator.ValidTicker(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker symbol"})
		return
	}

	report, err := h.runner.ProcessTicker(c.Request.Context(), symbol, true)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data available for ticker"})
			return
		}
		slog.Error("refresh failed", "ticker", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed"})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		Ticker:   symbol,
		Degraded: report.Degraded,
		Summary:  toSummaryResponse(report.Summary),
	})
}
