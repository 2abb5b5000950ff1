package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/api"
	"github.com/subcue/subcue/internal/subfile"
)

var exportCmd = &cobra.Command{
	Use:   "export [project_id] [output_file]",
	Short: "Export a project's subtitles to a file",
	Long: `Fetch a project's cues from the backend and write them to a subtitle
file. The format follows the file extension (.srt, .vtt, .ass).

Translated text is preferred when present; --bilingual stacks the
translation over the source text.

Examples:
  subcue export 6f1c9a movie.srt
  subcue export 6f1c9a movie.vtt --bilingual
  subcue export 6f1c9a movie.ass --title "My Movie"`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		Bool("bilingual", false, "Write translation and source text together")
	exportCmd.Flags().
		String("title", "", "Title for ASS script info")
	exportCmd.Flags().
		String("font", "", "Font name for ASS styling")
	exportCmd.Flags().
		Int("font-size", 0, "Font size for ASS styling")
}

func runExport(cmd *cobra.Command, args []string) error {
	projectID, outputPath := args[0], args[1]

	bilingual, _ := cmd.Flags().GetBool("bilingual")
	title, _ := cmd.Flags().GetString("title")
	font, _ := cmd.Flags().GetString("font")
	fontSize, _ := cmd.Flags().GetInt("font-size")

	// fail on a bad extension before any network round trip
	if _, err := subfile.FormatFromPath(outputPath); err != nil {
		return err
	}

	client := api.NewClient(
		cfg.BaseURL, cfg.APITimeout, cfg.TranslateTimeout, logger,
	)

	cues, err := client.ListSubtitles(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("failed to fetch subtitles: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("project %s has no subtitles", projectID)
	}

	if err := subfile.Export(cues, outputPath, subfile.ExportOptions{
		Bilingual: bilingual,
		Title:     title,
		FontName:  font,
		FontSize:  fontSize,
	}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Exported %d cues to %s\n", len(cues), outputPath)
	return nil
}
