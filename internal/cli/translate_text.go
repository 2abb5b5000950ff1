package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/subcue/subcue/internal/api"
)

var translateTextCmd = &cobra.Command{
	Use:   "translate-text [text]",
	Short: "Translate a single text via the backend",
	Long: `Translate one text through the backend's translate-text endpoint.

The request uses the extended translation timeout rather than the
standard API timeout.

Examples:
  subcue translate-text "Hello, world" --target-language spanish
  subcue translate-text "Guten Tag" -l german -t en`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslateText,
}

func init() {
	rootCmd.AddCommand(translateTextCmd)

	translateTextCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateTextCmd.Flags().
		StringP("language", "l", "", "Source language (autodetected when omitted)")

	_ = translateTextCmd.MarkFlagRequired("target-language")
}

func runTranslateText(cmd *cobra.Command, args []string) error {
	text := args[0]
	targetLang, _ := cmd.Flags().GetString("target-language")
	sourceLang, _ := cmd.Flags().GetString("language")

	client := api.NewClient(
		cfg.BaseURL, cfg.APITimeout, cfg.TranslateTimeout, logger,
	)

	translated, err := client.TranslateText(
		context.Background(),
		api.TranslateTextRequest{
			Text:           text,
			SourceLanguage: sourceLang,
			TargetLanguage: targetLang,
		},
	)
	if err != nil {
		if kind, ok := api.TranslateKind(err); ok {
			return fmt.Errorf("translation failed (%s): %w", kind, err)
		}
		return err
	}

	fmt.Println(translated)
	return nil
}
