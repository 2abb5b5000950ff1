package subtitle

import (
	"github.com/google/uuid"
)

// represents a single timed text cue
type Subtitle struct {
	ID             string
	StartTime      float64 // seconds
	EndTime        float64 // seconds
	SourceText     string
	TranslatedText string // empty means not yet translated

	// presentation-only fields, opaque to the sync engine
	Confidence float64
	Styling    Styling
	Position   string
}

// on-screen presentation attributes; the engine carries but never
// interprets them
type Styling struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        int     `json:"fontSize,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Bold            bool    `json:"bold,omitempty"`
	Italic          bool    `json:"italic,omitempty"`
	Outline         float64 `json:"outline,omitempty"`
}

// returns the styling applied to newly created cues
func DefaultStyling() Styling {
	return Styling{
		FontFamily: "Arial",
		FontSize:   20,
		Color:      "#FFFFFF",
		Outline:    2,
	}
}

// returns the cue duration in seconds
func (s Subtitle) Duration() float64 {
	return s.EndTime - s.StartTime
}

// reports whether t falls within the cue, both bounds inclusive
func (s Subtitle) Contains(t float64) bool {
	return s.StartTime <= t && t <= s.EndTime
}

// generates a collision-resistant cue id; safe under rapid successive
// creation
func NewID() string {
	return uuid.NewString()
}
