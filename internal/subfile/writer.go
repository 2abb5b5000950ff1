package subfile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/subcue/subcue/internal/subtitle"
)

// writes a cue list to a subtitle file
type Writer interface {
	Write(cues []subtitle.Subtitle, path string) error
}

// SubRip format
type SRTWriter struct {
	Options ExportOptions
}

// WebVTT format
type VTTWriter struct {
	Options ExportOptions
}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Options ExportOptions
}

func NewWriter(format Format, opts ExportOptions) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{Options: opts}, nil
	case FormatVTT:
		return &VTTWriter{Options: opts}, nil
	case FormatASS:
		if opts.Title == "" {
			opts.Title = "Subcue Export"
		}
		if opts.FontName == "" {
			opts.FontName = "Arial"
		}
		if opts.FontSize <= 0 {
			opts.FontSize = 20
		}
		return &ASSWriter{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the cues to an SRT file
func (w *SRTWriter) Write(cues []subtitle.Subtitle, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for i, cue := range cues {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(cue.StartTime),
			formatSRTTime(cue.EndTime)))

		sb.WriteString(exportText(cue, w.Options.Bilingual))
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// writes the cues to a VTT file
func (w *VTTWriter) Write(cues []subtitle.Subtitle, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder

	// VTT header
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range cues {
		// optional cue identifier
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(cue.StartTime),
			formatVTTTime(cue.EndTime)))

		sb.WriteString(exportText(cue, w.Options.Bilingual))
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// writes the cues to an ASS file
func (w *ASSWriter) Write(cues []subtitle.Subtitle, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Options.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.Options.FontName, w.Options.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range cues {
		// dialogue line
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.StartTime),
			formatASSTime(cue.EndTime),
			escapeASSText(exportText(cue, w.Options.Bilingual))))
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// Export writes cues to path, picking the writer from the file extension.
func Export(cues []subtitle.Subtitle, path string, opts ExportOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	writer, err := NewWriter(format, opts)
	if err != nil {
		return err
	}
	return writer.Write(cues, path)
}

func splitSeconds(seconds float64) (h, m, s, ms int) {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int(math.Round(seconds * 1000))
	h = totalMillis / 3600000
	m = (totalMillis / 60000) % 60
	s = (totalMillis / 1000) % 60
	ms = totalMillis % 1000
	return
}

func formatSRTTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
