package autosave

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/subcue/subcue/internal/logging"
	"github.com/subcue/subcue/internal/subtitle"
)

// scheduler state machine
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateSaving:
		return "saving"
	default:
		return "idle"
	}
}

// returns the current collection; called when the debounce fires so the
// payload reflects the latest state, not the state when the timer was armed
type SnapshotFunc func() []subtitle.Subtitle

// persists the collection to the backend
type SaveFunc func(ctx context.Context, cues []subtitle.Subtitle) error

// Scheduler debounces and deduplicates persistence of the cue collection.
// It runs Idle -> Scheduled -> Saving -> Idle: every change notification
// (re)arms the debounce timer, the timer firing starts at most one save,
// and changes landing during a save re-arm the timer to fire after the
// save settles.
type Scheduler struct {
	mu        sync.Mutex
	state     State
	delay     time.Duration
	timer     *time.Timer
	snapshot  SnapshotFunc
	save      SaveFunc
	logger    *logging.Logger
	lastSaved string
	rearm     bool
	closed    bool

	// observable side effects; may be nil
	OnSaveStarted   func()
	OnSaveCompleted func()
	OnSaveFailed    func(error)
}

func NewScheduler(
	delay time.Duration,
	snapshot SnapshotFunc,
	save SaveFunc,
	logger *logging.Logger,
) *Scheduler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scheduler{
		state:    StateIdle,
		delay:    delay,
		snapshot: snapshot,
		save:     save,
		logger:   logger,
	}
}

// NotifyChange records that a mutation completed. Unchanged content is
// suppressed via the fingerprint; otherwise the debounce timer is (re)armed,
// or a follow-up save is queued if one is already in flight.
func (s *Scheduler) NotifyChange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	switch s.state {
	case StateSaving:
		s.rearm = true
	case StateScheduled:
		s.timer.Reset(s.delay)
	case StateIdle:
		if Fingerprint(s.snapshot()) == s.lastSaved {
			return
		}
		s.state = StateScheduled
		s.timer = time.AfterFunc(s.delay, s.timerFired)
	}
}

// SaveNow bypasses the debounce timer but still respects the
// single-in-flight rule: if a save is running, a follow-up is queued
// instead of a concurrent request.
func (s *Scheduler) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.state == StateSaving {
		s.rearm = true
		s.mu.Unlock()
		return nil
	}
	if s.state == StateScheduled {
		s.timer.Stop()
	}
	s.state = StateSaving
	s.mu.Unlock()

	return s.runSave(ctx)
}

// MarkSaved records the given collection as the last persisted state
// without a network round trip; used after bulk loads of server-origin
// data so they are not immediately saved back.
func (s *Scheduler) MarkSaved(cues []subtitle.Subtitle) {
	fp := Fingerprint(cues)
	s.mu.Lock()
	s.lastSaved = fp
	s.mu.Unlock()
}

// returns the current state; exposed for observability
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels any pending timer. Pending callbacks become no-ops, so no
// save can fire into a torn-down project.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rearm = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateIdle
}

func (s *Scheduler) timerFired() {
	s.mu.Lock()
	if s.closed || s.state != StateScheduled {
		s.mu.Unlock()
		return
	}
	s.state = StateSaving
	s.mu.Unlock()

	_ = s.runSave(context.Background())
}

func (s *Scheduler) runSave(ctx context.Context) error {
	// snapshot at fire time, never a stale capture
	cues := s.snapshot()
	fp := Fingerprint(cues)

	s.mu.Lock()
	if fp == s.lastSaved {
		s.settleLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if s.OnSaveStarted != nil {
		s.OnSaveStarted()
	}
	s.logger.Debugw("saving subtitles", "count", len(cues))

	err := s.save(ctx, cues)

	s.mu.Lock()
	if err == nil {
		s.lastSaved = fp
	}
	s.settleLocked()
	s.mu.Unlock()

	if err != nil {
		// fingerprint unchanged: state stays dirty and the next edit or
		// explicit save retries
		s.logger.Warnw("save failed", "error", err)
		if s.OnSaveFailed != nil {
			s.OnSaveFailed(err)
		}
		return err
	}

	s.logger.Debugw("save completed", "count", len(cues))
	if s.OnSaveCompleted != nil {
		s.OnSaveCompleted()
	}
	return nil
}

// transitions out of Saving: re-arms the debounce when edits landed during
// the save, otherwise returns to Idle
func (s *Scheduler) settleLocked() {
	if s.closed {
		s.state = StateIdle
		return
	}
	if s.rearm {
		s.rearm = false
		s.state = StateScheduled
		s.timer = time.AfterFunc(s.delay, s.timerFired)
		return
	}
	s.state = StateIdle
}

// Fingerprint derives a stable digest over the persistence-relevant cue
// fields: time bounds, texts, styling and position. Volatile display-only
// fields (confidence) are excluded.
func Fingerprint(cues []subtitle.Subtitle) string {
	type persisted struct {
		ID        string           `json:"id"`
		Start     float64          `json:"start"`
		End       float64          `json:"end"`
		Text      string           `json:"text"`
		Translate string           `json:"translate"`
		Styling   subtitle.Styling `json:"styling"`
		Position  string           `json:"position"`
	}

	reduced := make([]persisted, len(cues))
	for i, c := range cues {
		reduced[i] = persisted{
			ID:        c.ID,
			Start:     c.StartTime,
			End:       c.EndTime,
			Text:      c.SourceText,
			Translate: c.TranslatedText,
			Styling:   c.Styling,
			Position:  c.Position,
		}
	}

	data, err := json.Marshal(reduced)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
