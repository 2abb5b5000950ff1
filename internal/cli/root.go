package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/config"
	"github.com/subcue/subcue/internal/logging"
)

var (
	verbose bool
	baseURL string
	wsURL   string

	logger *logging.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subcue",
	Short: "Subtitle editing and synchronization client",
	Long: `Subcue is a CLI client for a subtitle editing backend.

It keeps a project's subtitle cues synchronized with the server:
edits autosave with debouncing, translation progress streams in over
a websocket with polling as fallback, and cues can be imported from
and exported to SRT, VTT, and ASS files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		cfg = config.FromEnv()
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		if wsURL != "" {
			cfg.WSURL = wsURL
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&baseURL, "base-url", "", "Backend base URL (default http://localhost:8000)")
	rootCmd.PersistentFlags().
		StringVar(&wsURL, "ws-url", "", "Backend websocket URL (default ws://localhost:8000)")
}
