package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.ModelClaude3_5HaikuLatest,
		modelName: "claude-3-5-haiku",
	}
}

func (c *AnthropicClient) SelectTop(ticker string, articles []ArticleInput) ([]int, error) {
	resp, err := c.message(selectSystemPrompt, formatArticlesForSelection(ticker, articles))
	if err != nil {
		return nil, err
	}

	indices := parseSelection(resp, len(articles))
	if len(indices) == 0 {
		return nil, fmt.Errorf("anthropic selection returned no usable indices")
	}
	return indices, nil
}

func (c *AnthropicClient) Summarize(ticker string, articles []ArticleInput, history []HistoryEntry) (*SummaryResult, error) {
	resp, err := c.message(summarySystemPrompt, formatArticlesForSummary(ticker, articles, history))
	if err != nil {
		return nil, err
	}

	content := cleanJSONResponse(resp)

	var parsed struct {
		Summary     string `json:"summary"`
		WhatChanged string `json:"what_changed"`
		RiskFactors string `json:"risk_factors"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	return &SummaryResult{
		Summary:     parsed.Summary,
		WhatChanged: parsed.WhatChanged,
		RiskFactors: parsed.RiskFactors,
		ModelUsed:   c.modelName,
	}, nil
}

func (c *AnthropicClient) message(system, user string) (string, error) {
	resp, err := c.client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return resp.Content[0].Text, nil
}
