package translate

import (
	"fmt"

	"github.com/subcue/subcue/internal/subtitle"
)

// ItemsFromCues builds translation items from a cue list. The item index
// is the cue's position in the slice; cues with empty source text are
// skipped so their indices never reach the provider.
func ItemsFromCues(cues []subtitle.Subtitle) []TranslationItem {
	items := make([]TranslationItem, 0, len(cues))
	for i, cue := range cues {
		if cue.SourceText == "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: cue.SourceText})
	}
	return items
}

// ApplyToCues writes translated texts back onto a copy of the cue list,
// matching results to cues by index. Indices outside the list are an
// error rather than silently dropped.
func ApplyToCues(
	cues []subtitle.Subtitle,
	results []TranslationResult,
) ([]subtitle.Subtitle, error) {
	out := make([]subtitle.Subtitle, len(cues))
	copy(out, cues)

	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out) {
			return nil, fmt.Errorf(
				"result index %d out of range (have %d cues)",
				r.Index,
				len(out),
			)
		}
		if r.Text == "" {
			continue
		}
		out[r.Index].TranslatedText = r.Text
	}
	return out, nil
}
