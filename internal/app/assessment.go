package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/telemetry"
)

const (
	DefaultAutoSaveDelay  = 30 * time.Second
	DefaultSessionTimeout = time.Hour
	DefaultCheckInterval  = time.Minute
)

// SessionTimeoutWarning is sent to subscribers when an idle session is force-saved.
const SessionTimeoutWarning = "Your session has been inactive for a while. Your progress has been saved."

// AssessmentConfig wires one assessment host.
type AssessmentConfig struct {
	SessionID      string
	OwnerID        string
	MaxSection     int
	AutoSaveDelay  time.Duration
	SessionTimeout time.Duration
	CheckInterval  time.Duration
	Drafts         DraftStore
	Scheduler      Scheduler
	Recorder       *telemetry.Recorder
	Now            func() time.Time
}

// Update is pushed to subscribers after every dispatch.
type Update struct {
	State   domain.AssessmentState `json:"state"`
	Warning string                 `json:"warning,omitempty"`
}

// Assessment owns one AssessmentState and everything time-driven around it:
// draft persistence, debounced auto-save and idle-session detection.
type Assessment struct {
	id      string
	owner   string
	machine Machine
	cfg     AssessmentConfig

	mu           sync.Mutex
	state        domain.AssessmentState
	autoSave     Timer
	autoSaveGen  uint64
	subscribers  map[chan Update]struct{}
	stopWatching chan struct{}
	closed       bool
}

// NewAssessment creates a host with a fresh state.
func NewAssessment(cfg AssessmentConfig) *Assessment {
	if cfg.AutoSaveDelay <= 0 {
		cfg.AutoSaveDelay = DefaultAutoSaveDelay
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler
	}
	if cfg.Recorder == nil {
		cfg.Recorder = telemetry.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Assessment{
		id:          cfg.SessionID,
		owner:       cfg.OwnerID,
		machine:     Machine{MaxSection: cfg.MaxSection, Now: cfg.Now},
		cfg:         cfg,
		state:       domain.NewAssessmentState(),
		subscribers: make(map[chan Update]struct{}),
	}
}

// ID is the session identifier.
func (a *Assessment) ID() string { return a.id }

// Owner is the user the session belongs to.
func (a *Assessment) Owner() string { return a.owner }

// State returns a copy of the current state.
func (a *Assessment) State() domain.AssessmentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// NeedsUnloadConfirmation reports whether leaving now would discard unsaved changes.
func (a *Assessment) NeedsUnloadConfirmation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.HasUnsavedChanges
}

// Dispatch applies an action and returns the resulting state. Persistence
// failures are recorded, never returned.
func (a *Assessment) Dispatch(ctx context.Context, action Action) domain.AssessmentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dispatchLocked(ctx, action, "")
}

func (a *Assessment) dispatchLocked(ctx context.Context, action Action, warning string) domain.AssessmentState {
	next := a.machine.Reduce(a.state, action)

	switch action.(type) {
	case SaveDraft:
		a.persistLocked(ctx, next)
	case Reset:
		if err := a.cfg.Drafts.RemoveDraft(ctx, a.draftKey()); err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
			a.cfg.Recorder.Error(a.id, "remove draft failed", err)
		}
	}
	a.state = next

	switch act := action.(type) {
	case SetResponse:
		a.scheduleAutoSaveLocked()
	case SetHasUnsavedChanges:
		if act.Value {
			a.scheduleAutoSaveLocked()
		}
	}
	if !a.state.HasUnsavedChanges {
		a.cancelAutoSaveLocked()
	}

	out := a.state.Clone()
	a.broadcastLocked(Update{State: out, Warning: warning})
	return out
}

func (a *Assessment) persistLocked(ctx context.Context, snapshot domain.AssessmentState) {
	data, err := EncodeDraft(snapshot)
	if err != nil {
		a.cfg.Recorder.Error(a.id, "encode draft failed", err)
		return
	}
	if err := a.cfg.Drafts.SetDraft(ctx, a.draftKey(), data); err != nil {
		a.cfg.Recorder.Error(a.id, "save draft failed", err)
		return
	}
	a.cfg.Recorder.Info(a.id, "draft saved", map[string]string{"lastSaved": snapshot.LastSaved})
}

func (a *Assessment) draftKey() string {
	return DraftKey(a.id)
}

// Restore loads a persisted draft if one exists. A corrupted draft is removed.
// It reports whether a draft was applied.
func (a *Assessment) Restore(ctx context.Context) bool {
	data, err := a.cfg.Drafts.GetDraft(ctx, a.draftKey())
	if err != nil {
		if !errors.Is(err, domain.ErrDraftNotFound) {
			a.cfg.Recorder.Error(a.id, "load draft failed", err)
		}
		return false
	}
	snapshot, err := DecodeDraft(data)
	if err != nil {
		a.cfg.Recorder.Warn(a.id, "discarding corrupted draft", map[string]string{"reason": err.Error()})
		if rmErr := a.cfg.Drafts.RemoveDraft(ctx, a.draftKey()); rmErr != nil && !errors.Is(rmErr, domain.ErrDraftNotFound) {
			a.cfg.Recorder.Error(a.id, "remove corrupted draft failed", rmErr)
		}
		return false
	}
	a.Dispatch(ctx, LoadDraft{Snapshot: snapshot})
	return true
}

func (a *Assessment) scheduleAutoSaveLocked() {
	if a.closed {
		return
	}
	if a.autoSave != nil {
		a.autoSave.Stop()
	}
	a.autoSaveGen++
	gen := a.autoSaveGen
	a.autoSave = a.cfg.Scheduler.AfterFunc(a.cfg.AutoSaveDelay, func() {
		a.autoSaveFired(gen)
	})
}

func (a *Assessment) cancelAutoSaveLocked() {
	if a.autoSave != nil {
		a.autoSave.Stop()
		a.autoSave = nil
	}
	a.autoSaveGen++
}

func (a *Assessment) autoSaveFired(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	// a newer change rescheduled the timer after this one started firing
	if gen != a.autoSaveGen || a.closed {
		return
	}
	a.autoSave = nil
	if a.state.HasUnsavedChanges {
		a.dispatchLocked(context.Background(), SaveDraft{}, "")
	}
}

// CheckSession force-saves an idle session with unsaved changes and warns
// subscribers. The session itself is kept. It reports whether it timed out.
func (a *Assessment) CheckSession(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	idle := a.cfg.Now().Sub(time.UnixMilli(a.state.LastActive))
	if idle <= a.cfg.SessionTimeout || !a.state.HasUnsavedChanges {
		return false
	}
	a.cfg.Recorder.Warn(a.id, "session timed out with unsaved changes", map[string]string{"idle": idle.Round(time.Second).String()})
	a.dispatchLocked(ctx, SaveDraft{}, SessionTimeoutWarning)
	return true
}

// Watch starts the periodic session check until ctx ends or Close is called.
func (a *Assessment) Watch(ctx context.Context) {
	a.mu.Lock()
	if a.stopWatching != nil || a.closed {
		a.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	a.stopWatching = stop
	interval := a.cfg.CheckInterval
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				a.CheckSession(ctx)
			}
		}
	}()
}

// Subscribe returns a channel of updates, primed with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (a *Assessment) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := Update{State: a.state.Clone()}
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Assessment) broadcastLocked(u Update) {
	for ch := range a.subscribers {
		select {
		case ch <- u:
		default:
			// drop the oldest update so a slow reader never blocks dispatch
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}

// Close stops timers and the session watcher. Pending changes are not saved.
func (a *Assessment) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.cancelAutoSaveLocked()
	if a.stopWatching != nil {
		close(a.stopWatching)
	}
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}
