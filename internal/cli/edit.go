package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/editor"
	"github.com/subcue/subcue/internal/subtitle"
)

var editCmd = &cobra.Command{
	Use:   "edit [project_id]",
	Short: "Open a project session and keep it synchronized",
	Long: `Open an editing session for a project and keep its cues synchronized
with the backend until interrupted.

The session listens on the push channel for translation progress and
server-side updates, falls back to polling when the channel degrades,
and autosaves any changes. Intended for driving the sync engine headless
or for watching a project while another client edits it.

Examples:
  subcue edit 6f1c9a
  subcue edit 6f1c9a --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	projectID := args[0]

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	session := editor.NewSession(cfg, logger)
	defer session.Close()

	session.OnStatusChange(func(st subtitle.SyncStatus) {
		logger.Infow("sync status changed",
			"phase", st.Phase,
			"progress", st.Progress,
			"message", st.Message,
		)
	})

	if err := session.Open(ctx, projectID); err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}

	fmt.Printf("Project %s open with %d cues; press Ctrl+C to stop.\n",
		projectID, session.Store().Len())

	<-ctx.Done()
	fmt.Println("Closing session.")
	return nil
}
