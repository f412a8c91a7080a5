package llm

import (
	"fmt"
	"strconv"
	"strings"
)

const maxContentChars = 200

const selectSystemPrompt = `You are a senior financial analyst. Evaluate news articles for a ticker and select the 5-7 most impactful ones for institutional investors.

SELECTION CRITERIA:
- Market-moving potential and trading implications
- Credible sources (avoid promotional content)
- Quantifiable business impact (earnings, revenue, partnerships)
- Regulatory or competitive developments
- Management changes or strategic shifts

Return only article numbers (1,2,3,etc.) separated by commas. No other text.`

const summarySystemPrompt = `You are a senior financial analyst writing a daily brief for one ticker. Given today's selected articles and the last days' "what changed" notes, produce a digest.

Rules:
- Neutral tone, no urgency words, no judgmental language
- summary: 2-4 sentences covering the material developments
- what_changed: one or two sentences on what is NEW versus the prior days' notes; if nothing is new, say so plainly
- risk_factors: one sentence naming the main near-term risks

Output as JSON only, no other text:
{
  "summary": "the digest",
  "what_changed": "delta versus prior days",
  "risk_factors": "main near-term risks"
}`

func formatArticlesForSelection(ticker string, articles []ArticleInput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ticker: %s\n\n", ticker))
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("Article %d:\nTitle: %s\nSource: %s\nContent: %s\n\n",
			i+1, a.Title, a.Source, truncate(a.Content, maxContentChars)))
	}
	return sb.String()
}

func formatArticlesForSummary(ticker string, articles []ArticleInput, history []HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ticker: %s\n\nToday's articles:\n", ticker))
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n%s\n\n", i+1, a.Title, a.Source, truncate(a.Content, maxContentChars)))
	}
	if len(history) > 0 {
		sb.WriteString("Prior days' changes:\n")
		for i, h := range history {
			sb.WriteString(fmt.Sprintf("Day %d (%s): %s\n", i+1, h.Date, h.WhatChanged))
		}
	}
	return sb.String()
}

// parseSelection turns "1, 3, 5" into zero-based indices, dropping anything
// out of range.
func parseSelection(response string, count int) []int {
	var out []int
	for _, part := range strings.Split(response, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		idx := n - 1
		if idx >= 0 && idx < count {
			out = append(out, idx)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
