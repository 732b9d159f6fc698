package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"esg-assessment-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), "esg-core"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	c, err := repo.GetCatalog(context.Background(), "esg-core")
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(c.Questions()) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(c.Questions()))
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background(), "esg-core")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background(), "esg-core")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, calls %d", loader.calls)
	}
}

func TestCatalogRepositoryUnknown(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "missing"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, catalogID)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ID: "esg-core",
		Sections: []domain.Section{
			{
				ID:    "environment",
				Title: "Environment",
				Questions: []domain.Question{
					{ID: "q1", Prompt: "Do you track emissions?", Type: domain.MultipleChoice, Options: []string{"No", "Partly", "Yes"}, ImpactAreas: []domain.Category{domain.Environmental}},
					{ID: "q2", Prompt: "Renewable energy share (%)", Type: domain.NumberInput, ImpactAreas: []domain.Category{domain.Environmental}},
				},
			},
		},
	}
}
