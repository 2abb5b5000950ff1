package reconcile

import (
	"sync"

	"github.com/subcue/subcue/internal/logging"
	"github.com/subcue/subcue/internal/subtitle"
)

// Policy decides which update source wins per field group when local edits
// and server pushes race:
//
//   - timing and source text are owned by local edits; a background batch
//     never overwrites them
//   - translated text is server-authoritative and may be overwritten by a
//     batch at any time
//   - sync status is server-authoritative, except the optimistic
//     idle -> translating step when a translate request is issued
//
// A full replace is the one sanctioned exception to local ownership: it is
// a deliberate user-visible transition (bulk load), not a background
// overwrite. Applying the same batch twice is harmless, so duplicate or
// stale channel deliveries need no special handling upstream.
type Policy struct {
	store  *subtitle.Store
	logger *logging.Logger

	mu     sync.Mutex
	status subtitle.SyncStatus

	// invoked on every accepted status transition
	OnStatusChange func(subtitle.SyncStatus)
}

func NewPolicy(store *subtitle.Store, logger *logging.Logger) *Policy {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Policy{
		store:  store,
		logger: logger,
		status: subtitle.SyncStatus{Phase: subtitle.PhaseIdle},
	}
}

// ApplyBatch reconciles a background subtitle batch (channel or poll) into
// the store. Only the translation field is taken from the server; an
// in-progress local edit to timing or source text is never clobbered.
// Batch cues are matched by id, with a positional fallback for backends
// that send cues without ids.
func (p *Policy) ApplyBatch(incoming []subtitle.Subtitle) {
	local := p.store.Snapshot()

	for _, in := range incoming {
		target, ok := p.match(local, in)
		if !ok {
			continue
		}
		if in.TranslatedText == "" || in.TranslatedText == target.TranslatedText {
			continue
		}
		translation := in.TranslatedText
		if err := p.store.Update(target.ID, subtitle.Patch{TranslatedText: &translation}); err != nil {
			// cue removed since the snapshot; stale update, skip
			p.logger.Debugw("skipping reconcile for removed cue", "id", target.ID)
		}
	}
}

// ApplyReplace performs the sanctioned full replacement used by bulk loads
func (p *Policy) ApplyReplace(cues []subtitle.Subtitle) {
	p.store.ReplaceAll(cues)
}

// ApplyStatus records a server-reported status; the server is
// authoritative, so whatever it reports wins
func (p *Policy) ApplyStatus(st subtitle.SyncStatus) {
	p.mu.Lock()
	p.status = st
	notify := p.OnStatusChange
	p.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}

// MarkTranslating performs the one sanctioned local status transition:
// idle -> translating, set optimistically when a translate request is
// issued and confirmed or corrected by the first server message
func (p *Policy) MarkTranslating(message string) {
	p.mu.Lock()
	if p.status.Phase != subtitle.PhaseIdle && p.status.Phase != subtitle.PhaseCompleted &&
		p.status.Phase != subtitle.PhaseFailed {
		p.mu.Unlock()
		return
	}
	st := subtitle.SyncStatus{Phase: subtitle.PhaseTranslating, Message: message}
	p.status = st
	notify := p.OnStatusChange
	p.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}

func (p *Policy) Status() subtitle.SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// matches an incoming cue to a local one: by id when the backend sent one
// we know, otherwise by identical time bounds and source text
func (p *Policy) match(local []subtitle.Subtitle, in subtitle.Subtitle) (subtitle.Subtitle, bool) {
	for _, cue := range local {
		if cue.ID == in.ID {
			return cue, true
		}
	}
	for _, cue := range local {
		if cue.StartTime == in.StartTime && cue.EndTime == in.EndTime &&
			cue.SourceText == in.SourceText {
			return cue, true
		}
	}
	return subtitle.Subtitle{}, false
}
