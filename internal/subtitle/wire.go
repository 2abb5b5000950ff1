package subtitle

import (
	"encoding/json"
	"fmt"
)

// WireCue is the backend payload shape for one cue. Older backends used
// start/end instead of start_time/end_time and translatedText instead of
// translation; decoding tolerates every known historical shape, and the
// internal model never carries wire polymorphism.
type WireCue struct {
	ID        string   `json:"id,omitempty"`
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`

	// legacy timing pair
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`

	Text       string `json:"text"`
	SourceText string `json:"sourceText,omitempty"` // legacy alias for text

	Translation    *string `json:"translation,omitempty"`
	TranslatedText *string `json:"translatedText,omitempty"` // legacy alias

	Confidence *float64 `json:"confidence,omitempty"`
	Styling    *Styling `json:"styling,omitempty"`
	Position   string   `json:"position,omitempty"`
}

// converts a wire cue to the canonical shape, resolving legacy aliases;
// cues arriving without an id get a fresh one
func FromWire(w WireCue) Subtitle {
	cue := Subtitle{
		ID:       w.ID,
		Position: w.Position,
		Styling:  DefaultStyling(),
	}
	if cue.ID == "" {
		cue.ID = NewID()
	}

	switch {
	case w.StartTime != nil:
		cue.StartTime = *w.StartTime
	case w.Start != nil:
		cue.StartTime = *w.Start
	}
	switch {
	case w.EndTime != nil:
		cue.EndTime = *w.EndTime
	case w.End != nil:
		cue.EndTime = *w.End
	}

	cue.SourceText = w.Text
	if cue.SourceText == "" {
		cue.SourceText = w.SourceText
	}

	switch {
	case w.Translation != nil:
		cue.TranslatedText = *w.Translation
	case w.TranslatedText != nil:
		cue.TranslatedText = *w.TranslatedText
	}

	if w.Confidence != nil {
		cue.Confidence = *w.Confidence
	}
	if w.Styling != nil {
		cue.Styling = *w.Styling
	}

	return cue
}

// converts a canonical cue to the current wire shape; the legacy
// translatedText alias is mirrored for older backends
func ToWire(s Subtitle) WireCue {
	styling := s.Styling
	w := WireCue{
		ID:        s.ID,
		StartTime: &s.StartTime,
		EndTime:   &s.EndTime,
		Text:      s.SourceText,
		Styling:   &styling,
		Position:  s.Position,
	}
	if s.TranslatedText != "" {
		translation := s.TranslatedText
		w.Translation = &translation
		w.TranslatedText = &translation
	}
	if s.Confidence != 0 {
		confidence := s.Confidence
		w.Confidence = &confidence
	}
	return w
}

// decodes a JSON array of wire cues into canonical cues
func DecodeWireList(data []byte) ([]Subtitle, error) {
	var wire []WireCue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode subtitle payload: %w", err)
	}

	cues := make([]Subtitle, len(wire))
	for i, w := range wire {
		cues[i] = FromWire(w)
	}
	return cues, nil
}

// encodes canonical cues as the current wire shape
func EncodeWireList(cues []Subtitle) ([]byte, error) {
	wire := make([]WireCue, len(cues))
	for i, cue := range cues {
		wire[i] = ToWire(cue)
	}
	return json.Marshal(wire)
}
