package subtitle

// long-running operation phase for a project
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseTranslating Phase = "translating"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// derived sync state for a project; not persisted
type SyncStatus struct {
	Phase    Phase
	Message  string
	Progress int // 0-100
}

// reports whether a long-running server operation is in flight
func (s SyncStatus) Busy() bool {
	return s.Phase == PhaseTranslating
}
