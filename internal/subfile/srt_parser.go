package subfile

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/subcue/subcue/internal/subtitle"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT reads an SRT file into canonical cues. Each cue gets a fresh
// id and default styling; the file's text becomes the source text.
func ParseSRT(path string) ([]subtitle.Subtitle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	var cues []subtitle.Subtitle
	scanner := bufio.NewScanner(file)

	var current *subtitle.Subtitle
	var haveTiming bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.SourceText = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		haveTiming = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &subtitle.Subtitle{
					ID:      subtitle.NewID(),
					Styling: subtitle.DefaultStyling(),
				}
				continue
			}
		}

		if current != nil && !haveTiming {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := parseSRTTimestamp(
					matches[1], matches[2], matches[3], matches[4],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := parseSRTTimestamp(
					matches[5], matches[6], matches[7], matches[8],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				current.StartTime = start
				current.EndTime = end
				haveTiming = true
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return cues, nil
}

func parseSRTTimestamp(
	hours, minutes, seconds, millis string,
) (float64, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}
