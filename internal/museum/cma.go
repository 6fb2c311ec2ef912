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

// CMAProvider searches the Cleveland Museum of Art open-access API.
// Unlike the MET, the CMA returns full artwork records in a single search
// call, so there is no second fetch round.
type CMAProvider struct {
	baseURL    string
	sampleSize int
	client     *http.Client
	logger     *zap.Logger
}

// NewCMAProvider creates a CMA provider. baseURL is the artworks endpoint,
// e.g. "https://openaccess-api.clevelandart.org/api/artworks/".
func NewCMAProvider(baseURL string, sampleSize int, timeout time.Duration, logger *zap.Logger) *CMAProvider {
	return &CMAProvider{
		baseURL:    baseURL,
		sampleSize: sampleSize,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *CMAProvider) Name() model.Museum { return model.MuseumCMA }

// cmaSearchResponse is the envelope around CMA search results.
type cmaSearchResponse struct {
	Data []RawArtwork `json:"data"`
}

// Search returns a sampled set of raw CMA artwork records for the query.
func (p *CMAProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]RawArtwork, error) {
	if strings.TrimSpace(query) == "" {
		return []RawArtwork{}, nil
	}

	// "*" means "anything with an image" — the CMA API treats an empty q
	// as match-all, so the wildcard maps to an empty query string.
	if query == "*" {
		query = ""
	}

	searchURL := fmt.Sprintf("%s?q=%s&has_image=1&limit=100", p.baseURL, url.QueryEscape(query))
	if opts.Highlight {
		searchURL += "&highlight=1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "artrogue/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching CMA: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("CMA API returned %d: %s", resp.StatusCode, string(body))
	}

	var result cmaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding CMA response: %w", err)
	}

	if len(result.Data) == 0 {
		return []RawArtwork{}, nil
	}

	return sample(result.Data, p.sampleSize), nil
}

// Normalize maps a raw CMA record to the fixed Artwork shape. The CMA nests
// its image URL under images.web.url and its artists under a creators list;
// everything missing falls back to an empty string.
func (p *CMAProvider) Normalize(raw RawArtwork) model.Artwork {
	imageURL := ""
	if web := mapField(mapField(raw, "images"), "web"); web != nil {
		imageURL, _ = web["url"].(string)
	}

	artist := ""
	if creators := sliceField(raw, "creators"); len(creators) > 0 {
		if first, ok := creators[0].(map[string]any); ok {
			artist, _ = first["description"].(string)
			if artist == "" {
				artist, _ = first["display"].(string)
			}
		}
	}

	return model.Artwork{
		ImageURL:     imageURL,
		Title:        stringField(raw, "title"),
		Artist:       artist,
		CreationDate: stringField(raw, "creation_date"),
	}
}
