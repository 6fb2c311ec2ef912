// Package museum defines the interface for museum open-access APIs.
// Each provider (MET, CMA) knows how to search its own API and how to
// normalize its own record shape into the fixed UI-facing Artwork.
package museum

import (
	"context"
	"math/rand"

	"github.com/artrogue/artrogue/internal/model"
)

// RawArtwork is a provider-native search result: an opaque field-name-to-value
// mapping whose shape varies by provider. It stays opaque until Normalize
// maps it into a model.Artwork.
type RawArtwork map[string]any

// SearchOptions tweaks a search without changing the query itself.
type SearchOptions struct {
	// Highlight restricts results to pieces the museum flags as highlights
	// ("What's New?" in the UI).
	Highlight bool
}

// Provider is the interface for museum search APIs.
//
// The contract both implementations honor:
//   - an empty (or all-whitespace) query returns an empty slice without
//     touching the network
//   - "*" is the wildcard: search the whole collection
//   - "no matches" is an empty slice, not an error; errors mean the provider
//     itself misbehaved (network failure, bad status, bad JSON)
type Provider interface {
	// Name returns the museum this provider talks to.
	Name() model.Museum

	// Search queries the provider and returns a sampled set of raw records.
	Search(ctx context.Context, query string, opts SearchOptions) ([]RawArtwork, error)

	// Normalize maps one raw record into the fixed four-field Artwork.
	// Absent or null fields become empty strings, never absent keys.
	Normalize(raw RawArtwork) model.Artwork
}

// Registry maps museum tags to their providers. Wired once at startup.
type Registry map[model.Museum]Provider

// sample returns up to k elements of items in random order. When there are
// k or fewer items they are returned as-is, which keeps small result sets
// deterministic.
func sample[T any](items []T, k int) []T {
	if len(items) <= k {
		return items
	}
	picked := rand.Perm(len(items))[:k]
	out := make([]T, 0, k)
	for _, i := range picked {
		out = append(out, items[i])
	}
	return out
}

// stringField looks up a top-level string field, tolerating absent keys,
// nulls, and non-string values.
func stringField(raw RawArtwork, key string) string {
	if raw == nil {
		return ""
	}
	s, _ := raw[key].(string)
	return s
}

func mapField(raw map[string]any, key string) map[string]any {
	if raw == nil {
		return nil
	}
	m, _ := raw[key].(map[string]any)
	return m
}

func sliceField(raw RawArtwork, key string) []any {
	if raw == nil {
		return nil
	}
	s, _ := raw[key].([]any)
	return s
}
