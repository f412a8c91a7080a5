package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModelGPT4oMini,
		modelName: "gpt-4o-mini",
	}
}

func (c *OpenAIClient) SelectTop(ticker string, articles []ArticleInput) ([]int, error) {
	resp, err := c.client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(selectSystemPrompt),
			openai.UserMessage(formatArticlesForSelection(ticker, articles)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	indices := parseSelection(resp.Choices[0].Message.Content, len(articles))
	if len(indices) == 0 {
		return nil, fmt.Errorf("openai selection returned no usable indices")
	}
	return indices, nil
}

func (c *OpenAIClient) Summarize(ticker string, articles []ArticleInput, history []HistoryEntry) (*SummaryResult, error) {
	resp, err := c.client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(formatArticlesForSummary(ticker, articles, history)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

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
