// Package service contains the application logic that ties providers,
// sessions, and storage together. Handlers stay thin; this is where the
// search → normalize → record pipeline and the chat orchestration live.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/museum"
	"github.com/artrogue/artrogue/internal/storage"
)

// SearchResult is what a search ultimately hands to the UI: normalized
// artworks plus a human-readable notice when there is nothing to show.
// Provider failures degrade to an empty list + notice, never an error.
type SearchResult struct {
	Museum   model.Museum    `json:"museum"`
	Query    string          `json:"query"`
	Artworks []model.Artwork `json:"artworks"`
	Notice   string          `json:"notice,omitempty"`
}

// ArtService runs searches against the configured museum providers and
// records them in the history table.
type ArtService struct {
	providers  museum.Registry
	searchRepo storage.SearchRepository // nil disables history recording
	logger     *zap.Logger
}

// NewArtService creates a service over the given provider registry.
func NewArtService(providers museum.Registry, searchRepo storage.SearchRepository, logger *zap.Logger) *ArtService {
	return &ArtService{
		providers:  providers,
		searchRepo: searchRepo,
		logger:     logger,
	}
}

// Search queries one museum and returns normalized results.
//
// Error taxonomy: an unknown museum tag is a caller error and is returned as
// such. A provider that is unreachable or misbehaving is NOT an error to the
// caller — it degrades to an empty result set with a notice saying the
// museum is unreachable, which is distinct from the no-matches notice.
func (s *ArtService) Search(ctx context.Context, m model.Museum, query string, highlight bool) (*SearchResult, error) {
	provider, ok := s.providers[m]
	if !ok {
		return nil, fmt.Errorf("unknown museum: %s", m)
	}

	result := &SearchResult{
		Museum:   m,
		Query:    query,
		Artworks: []model.Artwork{},
	}

	raws, err := provider.Search(ctx, query, museum.SearchOptions{Highlight: highlight})
	if err != nil {
		s.logger.Warn("museum search failed",
			zap.String("museum", string(m)),
			zap.String("query", query),
			zap.Error(err),
		)
		result.Notice = fmt.Sprintf("%s appears to be unreachable right now. Please try again in a moment.", museumLabel(m))
		s.record(ctx, m, query, 0)
		return result, nil
	}

	for _, raw := range raws {
		result.Artworks = append(result.Artworks, provider.Normalize(raw))
	}

	if len(result.Artworks) == 0 {
		result.Notice = "No results yet. Try a search or click 'Surprise Me'."
	}

	s.record(ctx, m, query, len(result.Artworks))
	return result, nil
}

// Normalize exposes per-provider normalization for callers that hold a raw
// record (e.g. the select-artwork flow re-normalizing the record the UI
// passed back).
func (s *ArtService) Normalize(m model.Museum, raw museum.RawArtwork) (model.Artwork, error) {
	provider, ok := s.providers[m]
	if !ok {
		return model.Artwork{}, fmt.Errorf("unknown museum: %s", m)
	}
	return provider.Normalize(raw), nil
}

func (s *ArtService) record(ctx context.Context, m model.Museum, query string, count int) {
	if s.searchRepo == nil {
		return
	}
	rec := &model.SearchRecord{
		Museum:      string(m),
		Query:       query,
		ResultCount: count,
	}
	if err := s.searchRepo.Create(ctx, rec); err != nil {
		s.logger.Error("recording search", zap.Error(err))
	}
}

// museumLabel returns the display name the original UI used for each museum.
func museumLabel(m model.Museum) string {
	switch m {
	case model.MuseumMET:
		return "Metropolitan (MMA)"
	case model.MuseumCMA:
		return "Cleveland (CMA)"
	}
	return string(m)
}
