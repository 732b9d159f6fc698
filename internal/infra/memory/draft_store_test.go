package memory

import (
	"context"
	"errors"
	"testing"

	"esg-assessment-service/internal/domain"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	if _, err := store.GetDraft(ctx, "assessment_draft"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.SetDraft(ctx, "assessment_draft", []byte(`{"responses":{}}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := store.GetDraft(ctx, "assessment_draft")
	if err != nil || string(data) != `{"responses":{}}` {
		t.Fatalf("unexpected draft %q err=%v", data, err)
	}
	if err := store.RemoveDraft(ctx, "assessment_draft"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.GetDraft(ctx, "assessment_draft"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected removal, got %v", err)
	}
}
