package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(client, loader, time.Minute)

	c, err := repo.GetCatalog(context.Background(), "esg-core")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("catalog:esg-core") {
		t.Fatalf("expected catalog cached in redis")
	}
	if ttl := mr.TTL("catalog:esg-core"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected jittered ttl, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.GetCatalog(context.Background(), "esg-core")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	q, ok := cached.Question("q1")
	if !ok || q.Type != c.Sections[0].Questions[0].Type || len(q.Options) != 3 {
		t.Fatalf("expected full question from cache, got %+v", q)
	}

	if err := repo.Invalidate(context.Background(), "esg-core"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetCatalog(context.Background(), "esg-core")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewCatalogRepository(newClient(mr), memory.NewStaticCatalogLoader(), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "missing"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
	if mr.Exists("catalog:missing") {
		t.Fatalf("misses must not be cached")
	}
}

func TestCatalogRepositoryIgnoresCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("catalog:esg-core", "{not json")
	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), "esg-core"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected fallback to loader, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.CatalogLoader
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
				ID:    "env",
				Title: "Environment",
				Questions: []domain.Question{
					{
						ID:          "q1",
						Prompt:      "How do you track emissions?",
						Type:        domain.LikertScale,
						Options:     []string{"Not at all", "Partially", "Fully"},
						ImpactAreas: []domain.Category{domain.Environmental},
						Required:    true,
					},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
