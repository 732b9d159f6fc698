package app

import (
	"time"

	"esg-assessment-service/internal/domain"
)

// Machine is the pure reducer over AssessmentState.
type Machine struct {
	MaxSection int
	Now        func() time.Time
}

func (m Machine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Reduce applies one action and returns the next state. The input is never mutated.
func (m Machine) Reduce(s domain.AssessmentState, action Action) domain.AssessmentState {
	now := m.now()
	next := s.Clone()

	switch a := action.(type) {
	case SetSection:
		next.CurrentSection = clamp(a.Index, 0, m.MaxSection)
		next.LastActive = now.UnixMilli()
	case SetResponse:
		resp := a.Response
		resp.QuestionID = a.QuestionID
		resp.Timestamp = now.UTC()
		next.Responses[a.QuestionID] = resp
		next.HasUnsavedChanges = true
		next.LastActive = now.UnixMilli()
	case UpdateProgress:
		next.Progress = clamp(a.Value, 0, 100)
	case SetError:
		next.Errors[a.QuestionID] = a.Message
	case ClearError:
		delete(next.Errors, a.QuestionID)
	case SaveDraft:
		next.LastSaved = now.UTC().Format(time.RFC3339Nano)
		next.HasUnsavedChanges = false
	case LoadDraft:
		next = a.Snapshot.Clone()
		next.CurrentSection = clamp(next.CurrentSection, 0, m.MaxSection)
		next.Progress = clamp(next.Progress, 0, 100)
		next.HasUnsavedChanges = false
		next.LastActive = now.UnixMilli()
	case Reset:
		return domain.NewAssessmentState()
	case SetHasUnsavedChanges:
		next.HasUnsavedChanges = a.Value
	case SetAssessmentID:
		next.AssessmentID = a.ID
	}
	return next
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
