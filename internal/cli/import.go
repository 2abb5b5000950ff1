package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/api"
	"github.com/subcue/subcue/internal/subfile"
)

var importCmd = &cobra.Command{
	Use:   "import [project_id] [subtitle_file]",
	Short: "Replace a project's subtitles with a local SRT file",
	Long: `Parse a local SRT file and replace the project's cue collection on the
backend with its contents.

This overwrites whatever the project currently holds.

Examples:
  subcue import 6f1c9a movie.srt`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	projectID, inputPath := args[0], args[1]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	cues, err := subfile.ParseSRT(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	client := api.NewClient(
		cfg.BaseURL, cfg.APITimeout, cfg.TranslateTimeout, logger,
	)
	if err := client.ReplaceSubtitles(
		context.Background(), projectID, cues,
	); err != nil {
		return fmt.Errorf("failed to upload subtitles: %w", err)
	}

	fmt.Printf("Imported %d cues into project %s\n", len(cues), projectID)
	return nil
}
