package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"tickerbrief/db"
	"tickerbrief/internal/cache"
	"tickerbrief/internal/orchestrator"
	"tickerbrief/internal/pipeline"
	"tickerbrief/internal/provider"
	"tickerbrief/internal/quota"
	"tickerbrief/internal/repository"
	"tickerbrief/pkg/llm"
)

// The batch run walks the whole watchlist once, sequentially, and exits. It
// is meant to be cron-scheduled before market open.
func main() {
	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	force := false
	for _, arg := range os.Args[1:] {
		if arg == "--force" {
			force = true
		}
	}

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("error preparing schema: %v", err)
	}

	var store cache.Store
	if err := db.ConnectRedis(); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "error", err)
		store = cache.NewMemoryStore()
	} else {
		store = cache.NewRedisStore(db.Redis)
		defer db.CloseRedis()
	}

	ttl := cache.TTLConfigFromEnv()
	chain := provider.FromEnv()
	limits := append(chain.QuotaLimits(), provider.LLMQuotaLimit())
	tracker := quota.NewTracker(limits)
	orch := orchestrator.New(store, ttl, tracker, chain)

	tickerRepo := repository.NewTickerRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	summaryRepo := repository.NewSummaryRepository(db.DB)

	var client llm.SummaryClient
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		client = llm.NewOpenAIClient(key)
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		client = llm.NewAnthropicClient(key)
	} else {
		slog.Warn("no LLM API key configured, summaries will be degraded")
	}

	pipe := pipeline.New(orch, store, ttl, tracker, client, articleRepo, summaryRepo)

	tickers, err := tickerRepo.List()
	if err != nil {
		log.Fatalf("error listing tickers: %v", err)
	}

	if len(tickers) == 0 {
		slog.Info("watchlist is empty, nothing to do")
		return
	}

	symbols := make([]string, len(tickers))
	for i, t := range tickers {
		symbols[i] = t.Symbol
	}

	slog.Info("batch starting", "tickers", len(symbols), "force", force)
	start := time.Now()

	processed, failed := pipe.RunBatch(context.Background(), symbols, force)

	slog.Info("batch finished",
		"processed", processed,
		"failed", failed,
		"duration", time.Since(start).String(),
	)

	for _, u := range tracker.Usage() {
		slog.Info("quota usage", "provider", u.Provider, "calls", u.Calls, "remaining", u.Remaining, "window", u.Window)
	}
}
