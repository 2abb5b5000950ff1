package video

import (
	"context"
	"testing"
)

func TestParseProbeOutput(t *testing.T) {
	raw := `{
		"streams": [
			{
				"codec_type": "video",
				"codec_name": "h264",
				"width": 1920,
				"height": 1080,
				"r_frame_rate": "30000/1001"
			},
			{
				"codec_type": "audio",
				"codec_name": "aac"
			}
		],
		"format": {
			"duration": "125.480000"
		}
	}`

	info, err := parseProbeOutput("movie.mp4", raw)
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Codec != "h264" {
		t.Errorf("expected codec h264, got %q", info.Codec)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("unexpected dimensions: %dx%d", info.Width, info.Height)
	}
	if info.Duration != 125.48 {
		t.Errorf("expected duration 125.48, got %v", info.Duration)
	}
	if !info.HasAudio {
		t.Error("expected audio stream to be detected")
	}
	if info.FrameRate < 29.96 || info.FrameRate > 29.98 {
		t.Errorf("expected ~29.97 fps, got %v", info.FrameRate)
	}
}

func TestParseProbeOutputNoVideoStream(t *testing.T) {
	raw := `{
		"streams": [{"codec_type": "audio", "codec_name": "mp3"}],
		"format": {"duration": "10.0"}
	}`

	if _, err := parseProbeOutput("audio.mp3", raw); err == nil {
		t.Error("expected error for file without video stream")
	}
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	if _, err := parseProbeOutput("x.mp4", "not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"25/1", 25},
		{"30", 30},
		{"", 0},
		{"0/0", 0},
		{"30000/0", 0},
		{"bad/1", 0},
	}

	for _, tt := range tests {
		if got := parseFrameRate(tt.input); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProbeMissingFile(t *testing.T) {
	if _, err := Probe(context.Background(), "/nonexistent/video.mp4"); err == nil {
		t.Error("expected error for missing file")
	}
}
