package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// video file information
type Info struct {
	Path      string
	Duration  float64 // seconds
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// ffprobe JSON output shapes
type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe retrieves video file information via ffprobe
func Probe(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	var raw string
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		raw, err = ffmpeg.ProbeWithTimeout(videoPath, time.Until(deadline), nil)
	} else {
		raw, err = ffmpeg.Probe(videoPath)
	}
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(videoPath, raw)
}

func parseProbeOutput(videoPath, raw string) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath}

	if out.Format.Duration != "" {
		duration, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err)
		}
		info.Duration = duration
	}

	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			if info.Codec == "" {
				info.Codec = stream.CodecName
				info.Width = stream.Width
				info.Height = stream.Height
				info.FrameRate = parseFrameRate(stream.RFrameRate)
				if info.FrameRate == 0 {
					info.FrameRate = parseFrameRate(stream.AvgFrameRate)
				}
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if info.Codec == "" {
		return nil, fmt.Errorf("no video stream found in %s", videoPath)
	}

	return info, nil
}

// parses ffprobe rational frame rates like "30000/1001"
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) == 1 {
		v, _ := strconv.ParseFloat(parts[0], 64)
		return v
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
