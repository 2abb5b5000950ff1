package subfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/subcue/subcue/internal/subtitle"
)

// subtitle file format
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// subtitle format based on file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}

type ExportOptions struct {
	// write translated and source text together, translation on top
	Bilingual bool

	// ASS header fields
	Title    string
	FontName string
	FontSize int
}

// text a cue exports as: the translation when present, source otherwise;
// bilingual mode stacks translation over source
func exportText(cue subtitle.Subtitle, bilingual bool) string {
	if cue.TranslatedText == "" {
		return cue.SourceText
	}
	if bilingual && cue.SourceText != "" {
		return cue.TranslatedText + "\n" + cue.SourceText
	}
	return cue.TranslatedText
}
