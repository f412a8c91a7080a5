package provider

import (
	"context"
	"encoding/json"
	"time"

	"tickerbrief/internal/model"
	"tickerbrief/internal/quota"
)

// Spec is the static, read-only description of one upstream provider: what it
// serves, where it sits in the preference order, and its call budget. Lower
// Priority is tried first.
type Spec struct {
	Name        string
	Kinds       []model.DataKind
	Priority    int
	MinInterval time.Duration
	Limit       int
	Window      quota.WindowKind
}

func (s Spec) Supports(kind model.DataKind) bool {
	for _, k := range s.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// QuotaLimit translates the spec into the tracker's configuration.
func (s Spec) QuotaLimit() quota.Limit {
	return quota.Limit{
		Provider:    s.Name,
		Limit:       s.Limit,
		Window:      s.Window,
		MinInterval: s.MinInterval,
	}
}

// Payload is the tagged union crossing the adapter boundary. Exactly one
// field matching Kind is set; the orchestrator and cache never see
// provider-specific shapes.
type Payload struct {
	Kind     model.DataKind      `json:"kind"`
	Articles []model.NewsArticle `json:"articles,omitempty"`
	Quote    *model.Quote        `json:"quote,omitempty"`
	Logo     *model.Logo         `json:"logo,omitempty"`
	Summary  *model.DailySummary `json:"summary,omitempty"`
}

func (p *Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalPayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Fetcher is the uniform adapter surface. Implementations wrap one upstream
// API and normalize its response into a Payload.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, symbol string, kind model.DataKind) (*Payload, error)
}
