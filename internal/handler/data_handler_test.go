package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"tickerbrief/internal/model"
	"tickerbrief/internal/orchestrator"
	"tickerbrief/internal/provider"
)

type fakeResolver struct {
	result    *orchestrator.Result
	err       error
	lastForce bool
	lastKind  model.DataKind
}

func (f *fakeResolver) Resolve(ctx context.Context, symbol string, kind model.DataKind, force bool) (*orchestrator.Result, error) {
	f.lastForce = force
	f.lastKind = kind
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newDataRouter(resolver Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDataHandler(resolver)
	r.GET("/tickers/:symbol/news", h.GetNews)
	r.GET("/tickers/:symbol/quote", h.GetQuote)
	r.GET("/tickers/:symbol/logo", h.GetLogo)
	return r
}

func TestGetNews_LabelsProvenance(t *testing.T) {
	resolver := &fakeResolver{result: &orchestrator.Result{
		Payload: &provider.Payload{
			Kind:     model.KindNews,
			Articles: []model.NewsArticle{{Ticker: "AAPL", Title: "Headline"}},
		},
		Provider:  "FinnHub",
		Freshness: orchestrator.FreshnessLive,
	}}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/AAPL/news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res DataResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, "FinnHub", res.Provider)
	assert.Equal(t, "live", res.Freshness)
	assert.Equal(t, false, res.Degraded)
}

func TestGetNews_StaleIsMarkedDegraded(t *testing.T) {
	resolver := &fakeResolver{result: &orchestrator.Result{
		Payload:   &provider.Payload{Kind: model.KindNews},
		Provider:  "cache",
		Freshness: orchestrator.FreshnessStale,
		Degraded:  true,
	}}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/AAPL/news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res DataResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "stale", res.Freshness)
	assert.Equal(t, true, res.Degraded)
}

func TestGetQuote_RefreshForcesResolve(t *testing.T) {
	resolver := &fakeResolver{result: &orchestrator.Result{
		Payload:   &provider.Payload{Kind: model.KindQuote, Quote: &model.Quote{Symbol: "AAPL", Price: 191.2}},
		Provider:  "AlphaVantage",
		Freshness: orchestrator.FreshnessLive,
	}}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/AAPL/quote?refresh=true", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resolver.lastForce)
	assert.Equal(t, model.KindQuote, resolver.lastKind)
}

func TestGetNews_InvalidTicker(t *testing.T) {
	resolver := &fakeResolver{err: orchestrator.ErrInvalidTicker}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/toolongsymbol/news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNews_NoData(t *testing.T) {
	resolver := &fakeResolver{err: orchestrator.ErrNoData}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/AAPL/news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLogo_ReturnsLogo(t *testing.T) {
	resolver := &fakeResolver{result: &orchestrator.Result{
		Payload: &provider.Payload{
			Kind: model.KindLogo,
			Logo: &model.Logo{Ticker: "AAPL", URL: "https://logo.clearbit.com/apple.com"},
		},
		Provider:  "Clearbit",
		Freshness: orchestrator.FreshnessCached,
	}}
	r := newDataRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tickers/AAPL/logo", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res DataResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Clearbit", res.Provider)
	assert.Equal(t, "cached", res.Freshness)
}
