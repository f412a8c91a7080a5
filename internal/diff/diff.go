// Package diff derives the day-over-day delta for a ticker and collapses
// duplicate content. It only reads the history window handed to it and never
// touches cache, quota or providers.
package diff

import (
	"strings"

	"tickerbrief/internal/model"
)

// prefixLen is how much of a what-changed text participates in the seen-set
// key. Long enough to separate distinct narratives, short enough to collapse
// near-duplicates that differ only in trailing detail.
const prefixLen = 80

// UnchangedText replaces a what-changed narrative that repeats a prior day's.
const UnchangedText = "No material developments since the previous summary."

// NoDevelopmentsText is used when no candidate narrative exists at all.
const NoDevelopmentsText = "No material developments identified."

// DedupeArticles collapses articles sharing a normalized (title, source) key.
// When the same article arrives from two providers in one run, the one whose
// source ranks higher (lower priority value) wins and is the one attributed.
// Output order is first-appearance order, so the function is idempotent.
func DedupeArticles(articles []model.NewsArticle, priority func(source string) int) []model.NewsArticle {
	if priority == nil {
		priority = func(string) int { return 0 }
	}

	type slot struct {
		index    int
		priority int
	}

	kept := make([]model.NewsArticle, 0, len(articles))
	byKey := make(map[string]slot, len(articles))

	for _, a := range articles {
		key := articleKey(a)
		p := priority(a.Source)

		existing, ok := byKey[key]
		if !ok {
			byKey[key] = slot{index: len(kept), priority: p}
			kept = append(kept, a)
			continue
		}
		if p < existing.priority {
			kept[existing.index] = a
			byKey[key] = slot{index: existing.index, priority: p}
		}
	}

	return kept
}

// articleKey derives the composite dedup key: normalized title plus source,
// falling back to the URL when the title is empty.
func articleKey(a model.NewsArticle) string {
	title := normalize(a.Title)
	if title == "" {
		return normalize(a.URL)
	}
	return title + "|" + normalize(a.Source)
}

// WhatChanged checks today's candidate narrative against up to 7 prior days
// of summaries. A candidate already seen is reported as unchanged instead of
// being repeated verbatim in the timeline. Pure and deterministic.
func WhatChanged(history []model.DailySummary, candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return NoDevelopmentsText, false
	}

	seen := make(map[string]struct{}, len(history))
	for i, h := range history {
		if i >= 7 {
			break
		}
		if key := normalizedPrefix(h.WhatChanged); key != "" {
			seen[key] = struct{}{}
		}
	}

	if _, dup := seen[normalizedPrefix(candidate)]; dup {
		return UnchangedText, true
	}
	return candidate, false
}

func normalizedPrefix(s string) string {
	s = normalize(s)
	if len(s) > prefixLen {
		s = s[:prefixLen]
	}
	return s
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
