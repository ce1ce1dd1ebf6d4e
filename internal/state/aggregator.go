package state

import (
	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// Aggregator merges endpoint observations and auth patterns in record order.
//
// The first observation of an endpoint fixes its path parameters, body,
// response example and headers. Later observations only contribute query
// parameters whose names are new.
type Aggregator struct {
	endpoints []*model.Endpoint
	index     map[string]int
	seen      *Deduplicator
	auth      []model.AuthPattern
	authSeen  *Deduplicator
	merges    int
}

// NewAggregator creates an empty aggregator.
func NewAggregator(estimatedEndpoints int) *Aggregator {
	return &Aggregator{
		index:    make(map[string]int),
		seen:     NewDeduplicator(estimatedEndpoints),
		authSeen: NewDeduplicator(16),
	}
}

// Observe folds one endpoint observation in. It reports whether the
// observation was merged into an existing endpoint.
func (a *Aggregator) Observe(ep model.Endpoint) bool {
	key := ep.Key()

	if a.seen.Add(key) {
		ep.Observations = 1
		a.index[key] = len(a.endpoints)
		a.endpoints = append(a.endpoints, &ep)
		return false
	}

	existing := a.endpoints[a.index[key]]
	existing.Observations++
	a.merges++

	names := make(map[string]bool, len(existing.QueryParams))
	for _, p := range existing.QueryParams {
		names[p.Name] = true
	}
	for _, p := range ep.QueryParams {
		if names[p.Name] {
			continue
		}
		names[p.Name] = true
		existing.QueryParams = append(existing.QueryParams, p)
	}

	return true
}

// AddAuth records auth patterns, keeping the first of each (scheme, header).
// It returns the number of patterns that were new.
func (a *Aggregator) AddAuth(patterns ...model.AuthPattern) int {
	added := 0
	for _, p := range patterns {
		if a.authSeen.Add(p.Key()) {
			a.auth = append(a.auth, p)
			added++
		}
	}
	return added
}

// Endpoints returns copies of the aggregated endpoints in first-seen order.
func (a *Aggregator) Endpoints() []model.Endpoint {
	out := make([]model.Endpoint, len(a.endpoints))
	for i, ep := range a.endpoints {
		out[i] = *ep
		out[i].PathParams = cloneParams(ep.PathParams)
		out[i].QueryParams = cloneParams(ep.QueryParams)
		out[i].Headers = append([]model.Header(nil), ep.Headers...)
	}
	return out
}

// AuthPatterns returns the de-duplicated auth patterns in first-seen order.
func (a *Aggregator) AuthPatterns() []model.AuthPattern {
	return append([]model.AuthPattern(nil), a.auth...)
}

// Seen reports whether an endpoint with this key was already observed.
func (a *Aggregator) Seen(key string) bool {
	return a.seen.HasSeen(key)
}

// Len returns the number of distinct endpoints.
func (a *Aggregator) Len() int {
	return a.seen.Count()
}

// AuthCount returns the number of distinct auth patterns.
func (a *Aggregator) AuthCount() int {
	return a.authSeen.Count()
}

// Merges returns how many observations were folded into existing endpoints.
func (a *Aggregator) Merges() int {
	return a.merges
}

func cloneParams(params []model.Parameter) []model.Parameter {
	out := make([]model.Parameter, len(params))
	copy(out, params)
	return out
}
