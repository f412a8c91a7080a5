package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tickerbrief/db"
	"tickerbrief/internal/cache"
	"tickerbrief/internal/handler"
	"tickerbrief/internal/orchestrator"
	"tickerbrief/internal/pipeline"
	"tickerbrief/internal/provider"
	"tickerbrief/internal/quota"
	"tickerbrief/internal/repository"
	"tickerbrief/pkg/llm"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("error preparing schema: %v", err)
	}

	store := buildCacheStore()
	ttl := cache.TTLConfigFromEnv()

	chain := provider.FromEnv()
	limits := append(chain.QuotaLimits(), provider.LLMQuotaLimit())
	tracker := quota.NewTracker(limits)

	orch := orchestrator.New(store, ttl, tracker, chain)

	tickerRepo := repository.NewTickerRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	summaryRepo := repository.NewSummaryRepository(db.DB)

	pipe := pipeline.New(orch, store, ttl, tracker, buildSummaryClient(), articleRepo, summaryRepo)

	tickerHandler := handler.NewTickerHandler(tickerRepo, store)
	dataHandler := handler.NewDataHandler(orch)
	summaryHandler := handler.NewSummaryHandler(summaryRepo, pipe)
	statusHandler := handler.NewStatusHandler(tracker, tickerRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/tickers", tickerHandler.GetTickers)
	r.POST("/tickers", tickerHandler.AddTicker)
	r.DELETE("/tickers/:symbol", tickerHandler.RemoveTicker)
	r.GET("/tickers/:symbol/news", dataHandler.GetNews)
	r.GET("/tickers/:symbol/quote", dataHandler.GetQuote)
	r.GET("/tickers/:symbol/logo", dataHandler.GetLogo)
	r.GET("/tickers/:symbol/summary", summaryHandler.GetLatestSummary)
	r.GET("/tickers/:symbol/summary/history", summaryHandler.GetSummaryHistory)
	r.POST("/tickers/:symbol/refresh", summaryHandler.RefreshSummary)
	r.GET("/status/quota", statusHandler.GetQuota)
	r.GET("/health", statusHandler.GetHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = r.Run(":" + port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

// buildCacheStore prefers Redis so cached data survives restarts; without a
// reachable Redis it degrades to the in-process store.
func buildCacheStore() cache.Store {
	if err := db.ConnectRedis(); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "error", err)
		return cache.NewMemoryStore()
	}
	return cache.NewRedisStore(db.Redis)
}

// buildSummaryClient picks whichever model key is configured, preferring
// OpenAI. A nil client means every summary run falls back to the headline
// digest.
func buildSummaryClient() llm.SummaryClient {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return llm.NewOpenAIClient(key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return llm.NewAnthropicClient(key)
	}
	slog.Warn("no LLM API key configured, summaries will be degraded")
	return nil
}
