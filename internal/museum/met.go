package museum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
)

// METProvider searches the Metropolitan Museum of Art open-access API.
// The MET API is two-step: a search call returns object IDs, then each
// object is fetched individually. We sample a handful of IDs rather than
// fetching hundreds of objects per search.
type METProvider struct {
	baseURL    string
	sampleSize int
	client     *http.Client
	logger     *zap.Logger
}

// NewMETProvider creates a MET provider. baseURL is the collection API root,
// e.g. "https://collectionapi.metmuseum.org/public/collection/v1/".
func NewMETProvider(baseURL string, sampleSize int, timeout time.Duration, logger *zap.Logger) *METProvider {
	return &METProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/",
		sampleSize: sampleSize,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *METProvider) Name() model.Museum { return model.MuseumMET }

// metSearchResponse is the shape of the MET search endpoint response.
type metSearchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"` // null when there are no matches
}

// Search returns a sampled set of raw MET object records for the query.
func (p *METProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]RawArtwork, error) {
	if strings.TrimSpace(query) == "" {
		return []RawArtwork{}, nil
	}

	searchURL := fmt.Sprintf(
		"%ssearch?isHighlight=true&isOnView=true&hasImages=true&q=%s",
		p.baseURL, url.QueryEscape(query),
	)
	if opts.Highlight {
		searchURL += "&isHighlight=true"
	}

	var result metSearchResponse
	if err := p.getJSON(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("searching MET: %w", err)
	}

	if len(result.ObjectIDs) == 0 {
		return []RawArtwork{}, nil
	}

	ids := sample(result.ObjectIDs, p.sampleSize)

	artworks := make([]RawArtwork, 0, len(ids))
	for _, id := range ids {
		objectURL := fmt.Sprintf("%sobjects/%d", p.baseURL, id)

		var raw RawArtwork
		if err := p.getJSON(ctx, objectURL, &raw); err != nil {
			// Individual objects occasionally 404 or time out — skip them
			// rather than failing the whole search.
			p.logger.Debug("skipping MET object",
				zap.Int("object_id", id),
				zap.Error(err),
			)
			continue
		}
		artworks = append(artworks, raw)
	}

	return artworks, nil
}

// Normalize maps a raw MET object record to the fixed Artwork shape.
// MET exposes everything as flat fields. The live API reports the artist
// under artistDisplayName; older payloads used a bare artist field, so we
// accept either.
func (p *METProvider) Normalize(raw RawArtwork) model.Artwork {
	artist := stringField(raw, "artist")
	if artist == "" {
		artist = stringField(raw, "artistDisplayName")
	}

	return model.Artwork{
		ImageURL:     stringField(raw, "primaryImageSmall"),
		Title:        stringField(raw, "title"),
		Artist:       artist,
		CreationDate: stringField(raw, "objectDate"),
	}
}

func (p *METProvider) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "artrogue/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("MET API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
