package subtitle

import (
	"fmt"
	"sort"
	"sync"
)

// partial update of a cue; nil fields are left untouched
type Patch struct {
	StartTime      *float64
	EndTime        *float64
	SourceText     *string
	TranslatedText *string
	Confidence     *float64
	Styling        *Styling
	Position       *string
}

// Store is the in-memory ordered cue collection and the sole writer of it.
// The sequence is sorted ascending by start time after every mutation, and
// callers never observe a partially sorted intermediate state.
type Store struct {
	mu       sync.RWMutex
	cues     []Subtitle
	activeID string
	revision uint64
	onChange func()
}

func NewStore() *Store {
	return &Store{}
}

// registers a callback invoked after every completed mutation; used to
// arm the save scheduler
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// constructs a cue with a fresh id and default styling and inserts it in
// time order
func (s *Store) Insert(start, end float64, text string) (string, error) {
	if start < 0 || start >= end {
		return "", fmt.Errorf("%w: start=%g end=%g", ErrInvalidRange, start, end)
	}

	cue := Subtitle{
		ID:         NewID(),
		StartTime:  start,
		EndTime:    end,
		SourceText: text,
		Styling:    DefaultStyling(),
	}

	s.mu.Lock()
	s.cues = append(s.cues, cue)
	s.resortLocked()
	s.revision++
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return cue.ID, nil
}

// merges the patch into the cue; moving either time bound re-sorts the
// collection
func (s *Store) Update(id string, p Patch) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	cue := s.cues[idx]
	if p.StartTime != nil {
		cue.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		cue.EndTime = *p.EndTime
	}
	if cue.StartTime < 0 || cue.StartTime >= cue.EndTime {
		s.mu.Unlock()
		return fmt.Errorf(
			"%w: start=%g end=%g",
			ErrInvalidRange, cue.StartTime, cue.EndTime,
		)
	}
	if p.SourceText != nil {
		cue.SourceText = *p.SourceText
	}
	if p.TranslatedText != nil {
		cue.TranslatedText = *p.TranslatedText
	}
	if p.Confidence != nil {
		cue.Confidence = *p.Confidence
	}
	if p.Styling != nil {
		cue.Styling = *p.Styling
	}
	if p.Position != nil {
		cue.Position = *p.Position
	}

	s.cues[idx] = cue
	if p.StartTime != nil || p.EndTime != nil {
		s.resortLocked()
	}
	s.revision++
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// removes the cue; clears the active pointer if it pointed at it
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.cues = append(s.cues[:idx], s.cues[idx+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	s.revision++
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// clones the cue under a new id, placed immediately after the source's end
// with the same duration
func (s *Store) Duplicate(id string) (string, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	clone := s.cues[idx]
	duration := clone.EndTime - clone.StartTime
	clone.ID = NewID()
	clone.StartTime = s.cues[idx].EndTime
	clone.EndTime = clone.StartTime + duration

	s.cues = append(s.cues, clone)
	s.resortLocked()
	s.revision++
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return clone.ID, nil
}

// atomically replaces the whole collection; used by bulk load
func (s *Store) ReplaceAll(cues []Subtitle) {
	next := make([]Subtitle, len(cues))
	copy(next, cues)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = NewID()
		}
	}
	sortCues(next)

	s.mu.Lock()
	s.cues = next
	if s.activeID != "" && s.indexLocked(s.activeID) < 0 {
		s.activeID = ""
	}
	s.revision++
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// returns a copy of the current ordered collection
func (s *Store) Snapshot() []Subtitle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subtitle, len(s.cues))
	copy(out, s.cues)
	return out
}

func (s *Store) Get(id string) (Subtitle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return Subtitle{}, false
	}
	return s.cues[idx], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cues)
}

// monotonically increasing mutation counter; lets savers detect edits that
// landed while a request was in flight
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// records which cue is active; empty id clears the pointer. Unknown ids are
// ignored so a stale recomputation cannot resurrect a removed cue.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || s.indexLocked(id) >= 0 {
		s.activeID = id
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.cues {
		if s.cues[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) resortLocked() {
	sortCues(s.cues)
}

// sorts ascending by start time; ties break on duration then id so the
// order is deterministic regardless of insertion history
func sortCues(cues []Subtitle) {
	sort.Slice(cues, func(i, j int) bool {
		if cues[i].StartTime != cues[j].StartTime {
			return cues[i].StartTime < cues[j].StartTime
		}
		if cues[i].EndTime != cues[j].EndTime {
			return cues[i].EndTime < cues[j].EndTime
		}
		return cues[i].ID < cues[j].ID
	})
}
