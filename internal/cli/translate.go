package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/editor"
	"github.com/subcue/subcue/internal/subtitle"
)

var translateCmd = &cobra.Command{
	Use:   "translate [project_id]",
	Short: "Translate a project's subtitles on the backend",
	Long: `Request whole-project translation on the backend and follow its
progress until it completes.

Progress streams in over the push channel; if the channel degrades the
command falls back to polling the project until the translation settles.

Examples:
  subcue translate 6f1c9a --target-language spanish
  subcue translate 6f1c9a -l english -t ja --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Source language (autodetected when omitted)")
	translateCmd.Flags().
		Duration("timeout", 15*time.Minute, "How long to wait for the translation to finish")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	targetLang, _ := cmd.Flags().GetString("target-language")
	sourceLang, _ := cmd.Flags().GetString("language")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session := editor.NewSession(cfg, logger)
	defer session.Close()

	updates := make(chan subtitle.SyncStatus, 16)
	session.OnStatusChange(func(st subtitle.SyncStatus) {
		select {
		case updates <- st:
		default:
		}
	})

	if err := session.Open(ctx, projectID); err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}
	if session.Store().Len() == 0 {
		return fmt.Errorf("project %s has no subtitles to translate", projectID)
	}

	if err := session.TranslateProject(ctx, sourceLang, targetLang); err != nil {
		return err
	}
	fmt.Printf("Translating %d cues to %s...\n", session.Store().Len(), targetLang)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("translation did not finish: %w", ctx.Err())
		case st := <-updates:
			switch st.Phase {
			case subtitle.PhaseTranslating:
				if st.Progress > 0 {
					fmt.Printf("  %d%%\n", st.Progress)
				}
			case subtitle.PhaseFailed:
				return fmt.Errorf("translation failed: %s", st.Message)
			case subtitle.PhaseCompleted:
				fmt.Println("Translation completed.")
				return nil
			}
		}
	}
}
