package subtitle

// Navigator derives the active cue from playback time and walks the
// collection in time order. It reads snapshots only; the store stays the
// single writer of cue data.
type Navigator struct {
	store *Store
}

func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// ActiveAt returns the cue whose range contains t (start <= t <= end) and
// records it as active. When ranges overlap the winner is deterministic:
// earliest start, then shortest duration, then smallest id. Recomputation
// with the same time is idempotent.
func (n *Navigator) ActiveAt(t float64) (Subtitle, bool) {
	cues := n.store.Snapshot()

	best := -1
	for i := range cues {
		if !cues[i].Contains(t) {
			continue
		}
		if best < 0 || wins(cues[i], cues[best]) {
			best = i
		}
	}

	if best < 0 {
		n.store.SetActive("")
		return Subtitle{}, false
	}

	n.store.SetActive(cues[best].ID)
	return cues[best], true
}

// returns the cue immediately following the given one in sorted order
func (n *Navigator) Next(id string) (Subtitle, bool) {
	cues := n.store.Snapshot()
	for i := range cues {
		if cues[i].ID == id && i+1 < len(cues) {
			return cues[i+1], true
		}
	}
	return Subtitle{}, false
}

// returns the cue immediately preceding the given one in sorted order;
// scans a snapshot, never mutates the collection
func (n *Navigator) Previous(id string) (Subtitle, bool) {
	cues := n.store.Snapshot()
	for i := range cues {
		if cues[i].ID == id && i > 0 {
			return cues[i-1], true
		}
	}
	return Subtitle{}, false
}

// Seek marks the cue active and returns its start time as the new playback
// position. Unknown id returns ok=false with no side effects.
func (n *Navigator) Seek(id string) (float64, bool) {
	cue, ok := n.store.Get(id)
	if !ok {
		return 0, false
	}
	n.store.SetActive(id)
	return cue.StartTime, true
}

// overlap tie-break: earliest start, then shortest duration, then smallest id
func wins(a, b Subtitle) bool {
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	if a.Duration() != b.Duration() {
		return a.Duration() < b.Duration()
	}
	return a.ID < b.ID
}
