package llm

type ArticleInput struct {
	Title   string
	Source  string
	Content string
}

type HistoryEntry struct {
	Date        string
	WhatChanged string
}

type SummaryResult struct {
	Summary     string
	WhatChanged string
	RiskFactors string
	ModelUsed   string
}

// SummaryClient produces the per-ticker daily digest. SelectTop returns the
// zero-based indices of the most impactful articles; Summarize writes the
// digest using prior days' what-changed entries as context.
type SummaryClient interface {
	SelectTop(ticker string, articles []ArticleInput) ([]int, error)
	Summarize(ticker string, articles []ArticleInput, history []HistoryEntry) (*SummaryResult, error)
}
