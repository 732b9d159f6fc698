package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/scoring"
	"esg-assessment-service/internal/telemetry"
	"esg-assessment-service/internal/validation"
)

// SessionRepository abstracts where live assessment hosts are kept (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func() *Assessment) (*Assessment, bool)
	Get(sessionID string) (*Assessment, bool)
	Delete(sessionID string)
}

// CatalogRepository loads question catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// AssessmentRepository is the remote persistence boundary for assessments and reports.
type AssessmentRepository interface {
	SaveAssessment(ctx context.Context, record domain.AssessmentRecord) (string, error)
	GetAssessment(ctx context.Context, assessmentID string) (domain.AssessmentRecord, error)
	SaveReport(ctx context.Context, report domain.Report) error
	ListReports(ctx context.Context, ownerID string) ([]domain.Report, error)
}

// Uploader turns pending files into attachment metadata.
type Uploader interface {
	Upload(ctx context.Context, questionID string, file domain.FileHandle) (domain.Attachment, error)
}

// Settings tune scoring and timing for every session of a service.
type Settings struct {
	CatalogID      string
	Industry       string
	Weights        scoring.Weights
	Benchmarks     map[string]scoring.Benchmark
	AutoSaveDelay  time.Duration
	SessionTimeout time.Duration
	CheckInterval  time.Duration
}

// Dependencies are the collaborators of AssessmentService. Records and Uploader are optional.
type Dependencies struct {
	Sessions  SessionRepository
	Catalogs  CatalogRepository
	Drafts    DraftStore
	Records   AssessmentRepository
	Uploader  Uploader
	Recorder  *telemetry.Recorder
	Scheduler Scheduler
	Now       func() time.Time
}

// AssessmentService contains the assessment use cases.
type AssessmentService struct {
	deps     Dependencies
	settings Settings
}

// ErrRemoteUnavailable is returned by remote operations when no repository is configured.
var ErrRemoteUnavailable = errors.New("remote assessment storage not configured")

func NewAssessmentService(deps Dependencies, settings Settings) *AssessmentService {
	if deps.Recorder == nil {
		deps.Recorder = telemetry.Discard()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = SystemScheduler
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.Industry == "" {
		settings.Industry = scoring.OtherIndustry
	}
	return &AssessmentService{deps: deps, settings: settings}
}

// Catalog returns the configured question catalog.
func (s *AssessmentService) Catalog(ctx context.Context) (domain.Catalog, error) {
	return s.deps.Catalogs.GetCatalog(ctx, s.settings.CatalogID)
}

// Start opens (or reattaches to) a session, restoring its draft the first time.
func (s *AssessmentService) Start(ctx context.Context, sessionID, ownerID string) (domain.AssessmentState, error) {
	// Users cannot start an assessment against an unknown catalog.
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.AssessmentState{}, err
	}

	a, created := s.deps.Sessions.GetOrCreate(sessionID, func() *Assessment {
		return NewAssessment(AssessmentConfig{
			SessionID:      sessionID,
			OwnerID:        ownerID,
			MaxSection:     catalog.MaxSectionIndex(),
			AutoSaveDelay:  s.settings.AutoSaveDelay,
			SessionTimeout: s.settings.SessionTimeout,
			CheckInterval:  s.settings.CheckInterval,
			Drafts:         s.deps.Drafts,
			Scheduler:      s.deps.Scheduler,
			Recorder:       s.deps.Recorder,
			Now:            s.deps.Now,
		})
	})
	if created {
		if a.Restore(ctx) {
			s.deps.Recorder.Info(sessionID, "draft restored", nil)
		}
		a.Watch(context.Background())
	}
	return a.State(), nil
}

// End closes a session without saving.
func (s *AssessmentService) End(sessionID string) {
	a, ok := s.deps.Sessions.Get(sessionID)
	if !ok {
		return
	}
	a.Close()
	s.deps.Sessions.Delete(sessionID)
}

func (s *AssessmentService) session(sessionID string) (*Assessment, error) {
	a, ok := s.deps.Sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return a, nil
}

// State returns the session's current state.
func (s *AssessmentService) State(sessionID string) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	return a.State(), nil
}

// Dispatch applies a raw action to a session.
func (s *AssessmentService) Dispatch(ctx context.Context, sessionID string, action Action) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	return a.Dispatch(ctx, action), nil
}

// Answer validates a response and, if accepted, stores it and refreshes progress.
// A rejected response leaves a per-question error and returns a *validation.FieldError.
func (s *AssessmentService) Answer(ctx context.Context, sessionID, questionID string, resp domain.Response) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	q, ok := catalog.Question(questionID)
	if !ok {
		return a.State(), domain.ErrQuestionNotFound
	}

	if prev, ok := a.State().Responses[questionID]; ok && len(resp.Attachments) == 0 {
		resp.Attachments = prev.Attachments
	}
	if fe := validation.Check(resp, q); fe != nil {
		return a.Dispatch(ctx, SetError{QuestionID: questionID, Message: fe.Message}), fe
	}
	a.Dispatch(ctx, ClearError{QuestionID: questionID})
	state := a.Dispatch(ctx, SetResponse{QuestionID: questionID, Response: resp})
	return s.refreshProgress(ctx, a, catalog, state), nil
}

// Attach validates pending files, hands them to the uploader and stores the
// resulting attachment metadata on the question's response.
func (s *AssessmentService) Attach(ctx context.Context, sessionID, questionID string, files []domain.FileHandle, description string) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	if s.deps.Uploader == nil {
		return a.State(), errors.New("file uploads not configured")
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	if _, ok := catalog.Question(questionID); !ok {
		return a.State(), domain.ErrQuestionNotFound
	}
	if err := validation.ValidateFiles(files); err != nil {
		fe := &validation.FieldError{QuestionID: questionID, Kind: validation.KindInvalidFile, Message: err.Error()}
		return a.Dispatch(ctx, SetError{QuestionID: questionID, Message: fe.Message}), fe
	}

	resp := a.State().Responses[questionID]
	for _, f := range files {
		att, err := s.deps.Uploader.Upload(ctx, questionID, f)
		if err != nil {
			s.deps.Recorder.Error(sessionID, "upload failed", err)
			return a.State(), fmt.Errorf("upload %s: %w", f.Name, err)
		}
		if att.Description == "" {
			att.Description = description
		}
		resp.Attachments = append(resp.Attachments, att)
	}
	resp.Files = nil

	a.Dispatch(ctx, ClearError{QuestionID: questionID})
	state := a.Dispatch(ctx, SetResponse{QuestionID: questionID, Response: resp})
	return s.refreshProgress(ctx, a, catalog, state), nil
}

func (s *AssessmentService) refreshProgress(ctx context.Context, a *Assessment, catalog domain.Catalog, state domain.AssessmentState) domain.AssessmentState {
	result := scoring.CalculateAssessmentScore(state.Responses, catalog.Questions())
	if result.CompletionRate == state.Progress {
		return state
	}
	return a.Dispatch(ctx, UpdateProgress{Value: result.CompletionRate})
}

// GoToSection jumps to a section without validation.
func (s *AssessmentService) GoToSection(ctx context.Context, sessionID string, index int) (domain.AssessmentState, error) {
	return s.Dispatch(ctx, sessionID, SetSection{Index: index})
}

// Advance moves to the next section once every required question in the current one is answered.
func (s *AssessmentService) Advance(ctx context.Context, sessionID string) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	state := a.State()
	if len(catalog.Sections) == 0 {
		return state, nil
	}
	section := catalog.Sections[clamp(state.CurrentSection, 0, catalog.MaxSectionIndex())]
	if state, ok := s.validateQuestions(ctx, a, state, section.Questions); !ok {
		return state, ErrIncompleteSection(section.Title)
	}
	return a.Dispatch(ctx, SetSection{Index: state.CurrentSection + 1}), nil
}

func (s *AssessmentService) validateQuestions(ctx context.Context, a *Assessment, state domain.AssessmentState, questions []domain.Question) (domain.AssessmentState, bool) {
	errs := validation.Errors{}
	if validation.ValidateSection(state.Responses, questions, errs) {
		return state, true
	}
	for _, q := range questions {
		if msg, ok := errs[q.ID]; ok {
			state = a.Dispatch(ctx, SetError{QuestionID: q.ID, Message: msg})
		}
	}
	return state, false
}

// ErrIncompleteSection wraps domain.ErrIncomplete with the section name.
func ErrIncompleteSection(title string) error {
	if title == "" {
		return domain.ErrIncomplete
	}
	return fmt.Errorf("%s: %w", title, domain.ErrIncomplete)
}

// SaveDraft persists a snapshot immediately.
func (s *AssessmentService) SaveDraft(ctx context.Context, sessionID string) (domain.AssessmentState, error) {
	return s.Dispatch(ctx, sessionID, SaveDraft{})
}

// Reset discards the session's draft and answers.
func (s *AssessmentService) Reset(ctx context.Context, sessionID string) (domain.AssessmentState, error) {
	return s.Dispatch(ctx, sessionID, Reset{})
}

// Subscribe streams state updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, sessionID string) (<-chan Update, func(), error) {
	a, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := a.Subscribe()
	return ch, cancel, nil
}

// NeedsUnloadConfirmation reports whether leaving the session would lose changes.
func (s *AssessmentService) NeedsUnloadConfirmation(sessionID string) bool {
	a, err := s.session(sessionID)
	if err != nil {
		return false
	}
	return a.NeedsUnloadConfirmation()
}

// Score computes the current score for a session.
func (s *AssessmentService) Score(ctx context.Context, sessionID string) (domain.ScoreResult, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return s.score(a.State().Responses, catalog), nil
}

func (s *AssessmentService) score(responses map[string]domain.Response, catalog domain.Catalog) domain.ScoreResult {
	return scoring.CalculateAssessmentScore(responses, catalog.Questions(),
		scoring.WithIndustry(s.settings.Industry),
		scoring.WithWeights(s.settings.Weights),
		scoring.WithBenchmarks(s.settings.Benchmarks),
	)
}

// Report computes score, insights and improvement potential for a session.
func (s *AssessmentService) Report(ctx context.Context, sessionID string) (domain.Report, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.Report{}, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	state := a.State()
	return s.buildReport(state, catalog), nil
}

func (s *AssessmentService) buildReport(state domain.AssessmentState, catalog domain.Catalog) domain.Report {
	report := BuildReport(state.Responses, catalog, s.deps.Now(),
		scoring.WithIndustry(s.settings.Industry),
		scoring.WithWeights(s.settings.Weights),
		scoring.WithBenchmarks(s.settings.Benchmarks),
	)
	report.AssessmentID = state.AssessmentID
	return report
}

// Sync pushes the session to remote storage, assigning an assessment ID on first save.
func (s *AssessmentService) Sync(ctx context.Context, sessionID string) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	if s.deps.Records == nil {
		return a.State(), ErrRemoteUnavailable
	}
	state := a.State()
	id, err := s.deps.Records.SaveAssessment(ctx, domain.AssessmentRecord{
		ID:        state.AssessmentID,
		OwnerID:   a.Owner(),
		SessionID: sessionID,
		CatalogID: s.settings.CatalogID,
		Industry:  s.settings.Industry,
		Responses: state.Responses,
		Progress:  state.Progress,
		UpdatedAt: s.deps.Now().UTC(),
	})
	if err != nil {
		s.deps.Recorder.Error(sessionID, "remote sync failed", err)
		return state, fmt.Errorf("sync assessment: %w", err)
	}
	if state.AssessmentID == "" {
		a.Dispatch(ctx, SetAssessmentID{ID: id})
	}
	return a.Dispatch(ctx, SetHasUnsavedChanges{Value: false}), nil
}

// Resume loads a remotely stored assessment into the session.
func (s *AssessmentService) Resume(ctx context.Context, sessionID, assessmentID string) (domain.AssessmentState, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.AssessmentState{}, err
	}
	if s.deps.Records == nil {
		return a.State(), ErrRemoteUnavailable
	}
	record, err := s.deps.Records.GetAssessment(ctx, assessmentID)
	if err != nil {
		return a.State(), err
	}
	snapshot := domain.NewAssessmentState()
	for k, v := range record.Responses {
		snapshot.Responses[k] = v
	}
	snapshot.Progress = record.Progress
	snapshot.AssessmentID = record.ID
	return a.Dispatch(ctx, LoadDraft{Snapshot: snapshot}), nil
}

// Submit requires every required question to be answered, then stores and returns the final report.
func (s *AssessmentService) Submit(ctx context.Context, sessionID string) (domain.Report, error) {
	a, err := s.session(sessionID)
	if err != nil {
		return domain.Report{}, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	if _, ok := s.validateQuestions(ctx, a, a.State(), catalog.Questions()); !ok {
		return domain.Report{}, domain.ErrIncomplete
	}

	if s.deps.Records == nil {
		return s.buildReport(a.State(), catalog), nil
	}
	state, err := s.Sync(ctx, sessionID)
	if err != nil {
		return domain.Report{}, err
	}
	report := s.buildReport(state, catalog)
	if err := s.deps.Records.SaveReport(ctx, report); err != nil {
		s.deps.Recorder.Error(sessionID, "save report failed", err)
		return report, fmt.Errorf("save report: %w", err)
	}
	s.deps.Recorder.Info(sessionID, "assessment submitted", map[string]string{"assessmentId": report.AssessmentID})
	return report, nil
}

// History lists previously submitted reports for a user, newest first.
func (s *AssessmentService) History(ctx context.Context, ownerID string) ([]domain.Report, error) {
	if s.deps.Records == nil {
		return nil, ErrRemoteUnavailable
	}
	return s.deps.Records.ListReports(ctx, ownerID)
}
