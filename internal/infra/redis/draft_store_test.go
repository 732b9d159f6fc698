package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewDraftStore(newClient(mr), 24*time.Hour)
	key := app.DraftKey("s1")

	if _, err := store.GetDraft(ctx, key); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected draft not found, got %v", err)
	}

	state := domain.NewAssessmentState()
	state.Responses["q1"] = domain.Response{QuestionID: "q1", Value: domain.TextValue("Fully")}
	data, _ := app.EncodeDraft(state)
	if err := store.SetDraft(ctx, key, data); err != nil {
		t.Fatalf("set draft: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 24*time.Hour {
		t.Fatalf("expected draft ttl, got %s", ttl)
	}

	got, err := store.GetDraft(ctx, key)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	decoded, err := app.DecodeDraft(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := decoded.Responses["q1"].Value.Text(); v != "Fully" {
		t.Fatalf("unexpected draft %+v", decoded)
	}

	if err := store.RemoveDraft(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("expected draft removed")
	}
	// removing twice is fine
	if err := store.RemoveDraft(ctx, key); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestDraftStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewDraftStore(newClient(mr), time.Hour)
	_ = store.SetDraft(ctx, "assessment_draft", []byte(`{"responses":{}}`))

	mr.FastForward(2 * time.Hour)
	if _, err := store.GetDraft(ctx, "assessment_draft"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected expired draft, got %v", err)
	}
}
