package app

import "esg-assessment-service/internal/domain"

// Action is a sealed set of state transitions understood by Machine.Reduce.
type Action interface {
	isAction()
}

// SetSection moves to a section, clamped to the catalog bounds.
type SetSection struct{ Index int }

// SetResponse upserts an answer. The timestamp is always replaced with the current time.
type SetResponse struct {
	QuestionID string
	Response   domain.Response
}

// UpdateProgress sets the completion percentage, clamped to [0, 100].
type UpdateProgress struct{ Value int }

// SetError records a validation message for a question.
type SetError struct {
	QuestionID string
	Message    string
}

// ClearError removes a question's validation message.
type ClearError struct{ QuestionID string }

// SaveDraft marks the state as saved; the host persists the snapshot.
type SaveDraft struct{}

// LoadDraft replaces the state with a previously saved snapshot.
type LoadDraft struct{ Snapshot domain.AssessmentState }

// Reset discards everything and returns to the initial state.
type Reset struct{}

// SetHasUnsavedChanges overrides the dirty flag, e.g. after a remote sync.
type SetHasUnsavedChanges struct{ Value bool }

// SetAssessmentID associates the session with its remote record.
type SetAssessmentID struct{ ID string }

func (SetSection) isAction()           {}
func (SetResponse) isAction()          {}
func (UpdateProgress) isAction()       {}
func (SetError) isAction()             {}
func (ClearError) isAction()           {}
func (SaveDraft) isAction()            {}
func (LoadDraft) isAction()            {}
func (Reset) isAction()                {}
func (SetHasUnsavedChanges) isAction() {}
func (SetAssessmentID) isAction()      {}
