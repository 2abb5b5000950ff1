package realtime

import (
	"encoding/json"

	"github.com/subcue/subcue/internal/subtitle"
)

// push message taxonomy
type MessageType string

const (
	TypeStatus     MessageType = "status"
	TypeSubtitles  MessageType = "subtitles"
	TypeCompletion MessageType = "completion"
	TypeError      MessageType = "error"
	TypeHeartbeat  MessageType = "heartbeat"

	// Wildcard listeners observe every message type.
	Wildcard MessageType = "*"
)

// one push-channel message; every message carries type and, when
// applicable, the project id it belongs to
type Message struct {
	Type      MessageType     `json:"type"`
	ProjectID string          `json:"project_id,omitempty"`
	Status    string          `json:"status,omitempty"`
	Message   string          `json:"message,omitempty"`
	Progress  *int            `json:"progress,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// decodes the subtitle batch carried by a subtitles or completion message
func (m Message) Subtitles() ([]subtitle.Subtitle, error) {
	if len(m.Data) == 0 {
		return nil, nil
	}
	return subtitle.DecodeWireList(m.Data)
}

// maps wire status strings, current and historical, onto the phase enum
func PhaseFromWire(status string) subtitle.Phase {
	switch status {
	case "translating":
		return subtitle.PhaseTranslating
	case "completed", "translation_completed":
		return subtitle.PhaseCompleted
	case "failed", "translation_failed", "error":
		return subtitle.PhaseFailed
	default:
		return subtitle.PhaseIdle
	}
}

// converts a status message into the derived sync state
func (m Message) SyncStatus() subtitle.SyncStatus {
	st := subtitle.SyncStatus{
		Phase:   PhaseFromWire(m.Status),
		Message: m.Message,
	}
	if m.Progress != nil {
		st.Progress = *m.Progress
	}
	return st
}
