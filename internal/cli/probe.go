package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/video"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video_file]",
	Short: "Show media information for a video file",
	Long: `Inspect a video file with ffprobe and print its duration, resolution,
codec and frame rate. Useful for checking cue timing against the actual
media length before importing.

Examples:
  subcue probe movie.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := video.Probe(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Path:       %s\n", info.Path)
	fmt.Printf("Duration:   %.3fs\n", info.Duration)
	fmt.Printf("Resolution: %dx%d\n", info.Width, info.Height)
	fmt.Printf("Codec:      %s\n", info.Codec)
	fmt.Printf("Frame rate: %.3f fps\n", info.FrameRate)
	fmt.Printf("Has audio:  %v\n", info.HasAudio)
	return nil
}
