// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scout discovers paper candidates from external sources.
// Implements: prd001-discovery (R1-R3);
//
//	docs/ARCHITECTURE.md § Discovery.
//
// Each adapter queries one upstream API and returns candidates in
// PaperRecord shape, leaving dedup and triage to the orchestrator.
package scout

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Adapter is a discovery source. FetchCandidates returns fresh candidate
// records in source order; it does not consult the record store.
type Adapter interface {
	Name() string
	FetchCandidates(ctx context.Context) ([]types.PaperRecord, error)
}

// newLimiter builds a per-adapter rate limiter. Source APIs are shared
// infrastructure; the default stays at one request per second.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = 1
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
