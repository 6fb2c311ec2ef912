package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/museum"
)

// fakeProvider scripts a museum provider for tests.
type fakeProvider struct {
	name model.Museum
	raws []museum.RawArtwork
	err  error
}

func (f *fakeProvider) Name() model.Museum { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, opts museum.SearchOptions) ([]museum.RawArtwork, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

func (f *fakeProvider) Normalize(raw museum.RawArtwork) model.Artwork {
	title, _ := raw["title"].(string)
	return model.Artwork{Title: title}
}

// fakeSearchRepo records search rows in memory.
type fakeSearchRepo struct {
	records []*model.SearchRecord
}

func (r *fakeSearchRepo) Create(ctx context.Context, rec *model.SearchRecord) error {
	r.records = append(r.records, rec)
	return nil
}
func (r *fakeSearchRepo) Recent(ctx context.Context, limit int) ([]model.SearchRecord, error) {
	return nil, nil
}
func (r *fakeSearchRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.records)), nil
}
func (r *fakeSearchRepo) CountByMuseum(ctx context.Context, m model.Museum) (int64, error) {
	return 0, nil
}

func TestSearch_NormalizesAllResults(t *testing.T) {
	provider := &fakeProvider{
		name: model.MuseumMET,
		raws: []museum.RawArtwork{{"title": "One"}, {"title": "Two"}},
	}
	repo := &fakeSearchRepo{}
	svc := NewArtService(museum.Registry{model.MuseumMET: provider}, repo, zap.NewNop())

	result, err := svc.Search(context.Background(), model.MuseumMET, "anything", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(result.Artworks) != 2 {
		t.Fatalf("got %d artworks, want 2", len(result.Artworks))
	}
	if result.Artworks[0].Title != "One" || result.Artworks[1].Title != "Two" {
		t.Errorf("artworks = %+v", result.Artworks)
	}
	if result.Notice != "" {
		t.Errorf("unexpected notice %q", result.Notice)
	}

	if len(repo.records) != 1 {
		t.Fatalf("got %d history rows, want 1", len(repo.records))
	}
	if repo.records[0].ResultCount != 2 || repo.records[0].Museum != "met" {
		t.Errorf("history row = %+v", repo.records[0])
	}
}

func TestSearch_ProviderFailureDegradesToNotice(t *testing.T) {
	provider := &fakeProvider{name: model.MuseumCMA, err: errors.New("dial tcp: timeout")}
	svc := NewArtService(museum.Registry{model.MuseumCMA: provider}, &fakeSearchRepo{}, zap.NewNop())

	result, err := svc.Search(context.Background(), model.MuseumCMA, "gogh", false)
	if err != nil {
		t.Fatalf("provider failure must not surface as an error, got %v", err)
	}

	if len(result.Artworks) != 0 {
		t.Errorf("got %d artworks, want 0", len(result.Artworks))
	}
	if result.Artworks == nil {
		t.Error("artworks is nil, want empty slice")
	}
	if !strings.Contains(result.Notice, "unreachable") {
		t.Errorf("notice = %q, want an unreachable notice", result.Notice)
	}
}

func TestSearch_EmptyResultsGetNoMatchNotice(t *testing.T) {
	provider := &fakeProvider{name: model.MuseumMET}
	svc := NewArtService(museum.Registry{model.MuseumMET: provider}, &fakeSearchRepo{}, zap.NewNop())

	result, err := svc.Search(context.Background(), model.MuseumMET, "xyzzy", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Artworks) != 0 {
		t.Errorf("got %d artworks, want 0", len(result.Artworks))
	}
	if result.Notice == "" {
		t.Error("expected a no-results notice")
	}
	// The two empty outcomes must be distinguishable.
	if strings.Contains(result.Notice, "unreachable") {
		t.Errorf("no-match notice %q reads like a provider failure", result.Notice)
	}
}

func TestSearch_UnknownMuseum(t *testing.T) {
	svc := NewArtService(museum.Registry{}, &fakeSearchRepo{}, zap.NewNop())

	if _, err := svc.Search(context.Background(), model.Museum("louvre"), "mona lisa", false); err == nil {
		t.Fatal("expected error for unknown museum")
	}
}

func TestNormalize_DelegatesToProvider(t *testing.T) {
	provider := &fakeProvider{name: model.MuseumMET}
	svc := NewArtService(museum.Registry{model.MuseumMET: provider}, nil, zap.NewNop())

	art, err := svc.Normalize(model.MuseumMET, museum.RawArtwork{"title": "Irises"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if art.Title != "Irises" {
		t.Errorf("title = %q", art.Title)
	}

	if _, err := svc.Normalize(model.Museum("louvre"), nil); err == nil {
		t.Fatal("expected error for unknown museum")
	}
}
