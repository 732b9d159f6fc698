package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an assessment session has not been started.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrQuestionNotFound indicates a response references an unknown question ID.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAssessmentNotFound is returned when a remote assessment record is missing.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrDraftNotFound is returned by draft stores when no snapshot exists.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrCorruptDraft indicates a persisted snapshot could not be applied.
	ErrCorruptDraft = errors.New("corrupt draft")
	// ErrIncomplete blocks section advance and submission while required answers are missing.
	ErrIncomplete = errors.New("please answer all required questions before continuing")
)
