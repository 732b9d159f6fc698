package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"esg-assessment-service/internal/domain"
)

// DraftStorageKey is the base key under which draft snapshots are persisted.
const DraftStorageKey = "assessment_draft"

// DraftKey scopes the draft key to a session. An empty session uses the base key.
func DraftKey(sessionID string) string {
	if sessionID == "" {
		return DraftStorageKey
	}
	return DraftStorageKey + ":" + sessionID
}

// DraftStore is a get/set/remove channel for draft snapshots (local, Redis, file...).
// GetDraft returns domain.ErrDraftNotFound when nothing is stored under key.
type DraftStore interface {
	GetDraft(ctx context.Context, key string) ([]byte, error)
	SetDraft(ctx context.Context, key string, data []byte) error
	RemoveDraft(ctx context.Context, key string) error
}

// Scheduler creates cancellable one-shot timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules on the wall clock.
var SystemScheduler Scheduler = systemScheduler{}

// EncodeDraft serializes a snapshot in the persisted draft format.
func EncodeDraft(state domain.AssessmentState) ([]byte, error) {
	return json.Marshal(state)
}

// DecodeDraft parses a persisted snapshot. Snapshots without a responses
// object are rejected with domain.ErrCorruptDraft.
func DecodeDraft(data []byte) (domain.AssessmentState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.AssessmentState{}, fmt.Errorf("%w: %v", domain.ErrCorruptDraft, err)
	}
	raw, ok := fields["responses"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return domain.AssessmentState{}, fmt.Errorf("%w: missing responses", domain.ErrCorruptDraft)
	}

	var state domain.AssessmentState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.AssessmentState{}, fmt.Errorf("%w: %v", domain.ErrCorruptDraft, err)
	}
	return state.Clone(), nil
}
