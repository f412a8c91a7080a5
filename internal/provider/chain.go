package provider

import (
	"sort"

	"tickerbrief/internal/model"
	"tickerbrief/internal/quota"
)

// Chain is the ordered provider preference table. Reordering a fallback is a
// data edit on the registered specs, not a code change.
type Chain struct {
	specs    []Spec
	fetchers map[string]Fetcher
}

func NewChain() *Chain {
	return &Chain{fetchers: make(map[string]Fetcher)}
}

func (c *Chain) Register(spec Spec, fetcher Fetcher) {
	c.specs = append(c.specs, spec)
	c.fetchers[spec.Name] = fetcher
	sort.SliceStable(c.specs, func(i, j int) bool {
		return c.specs[i].Priority < c.specs[j].Priority
	})
}

// ProvidersFor returns the specs to attempt for a kind, highest preference
// first.
func (c *Chain) ProvidersFor(kind model.DataKind) []Spec {
	var out []Spec
	for _, s := range c.specs {
		if s.Supports(kind) {
			out = append(out, s)
		}
	}
	return out
}

func (c *Chain) FetcherFor(name string) Fetcher {
	return c.fetchers[name]
}

// SourcePriority ranks an article source for deduplication; unknown sources
// rank last.
func (c *Chain) SourcePriority(source string) int {
	for _, s := range c.specs {
		if s.Name == source {
			return s.Priority
		}
	}
	return int(^uint(0) >> 1)
}

// QuotaLimits collects every registered spec's budget for the tracker.
func (c *Chain) QuotaLimits() []quota.Limit {
	limits := make([]quota.Limit, 0, len(c.specs))
	for _, s := range c.specs {
		limits = append(limits, s.QuotaLimit())
	}
	return limits
}
