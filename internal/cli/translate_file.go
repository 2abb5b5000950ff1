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
	"github.com/subcue/subcue/internal/translate"
)

var translateFileCmd = &cobra.Command{
	Use:   "translate-file [subtitle_file]",
	Short: "Translate a local subtitle file without a project",
	Long: `Translate a local SRT file using an AI provider directly, without
going through a backend project.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line. With
--provider backend the texts are sent to the backend's translate-text
endpoint instead of an LLM.

Examples:
  subcue translate-file video.srt --target-language japanese
  subcue translate-file video.srt -t es --provider openai -o translated.srt
  subcue translate-file video.srt -t french --provider backend --overlay`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslateFile,
}

func init() {
	rootCmd.AddCommand(translateFileCmd)

	translateFileCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateFileCmd.Flags().
		StringP("language", "l", "", "Source language (autodetected when omitted)")
	translateFileCmd.Flags().
		StringP("output", "o", "", "Output file path")
	translateFileCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	translateFileCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateFileCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateFileCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic, backend)")
	translateFileCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateFileCmd.Flags().
		Int("batch-size", 50, "Number of subtitle entries per API request")

	_ = translateFileCmd.MarkFlagRequired("target-language")
}

func runTranslateFile(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	}

	provider := translate.Provider(providerStr)
	translator, err := buildTranslator(ctx, provider, apiKey, opts)
	if err != nil {
		return err
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, ext)
		if overlay {
			outputPath = fmt.Sprintf("%s.%s.overlay%s", baseName, targetLang, ext)
		} else {
			outputPath = fmt.Sprintf("%s.%s%s", baseName, targetLang, ext)
		}
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"provider", providerStr,
	)

	cues, err := subfile.ParseSRT(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	items := translate.ItemsFromCues(cues)

	var results []translate.TranslationResult
	if ct, ok := translator.(translate.ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = translator.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	translated, err := translate.ApplyToCues(cues, results)
	if err != nil {
		return fmt.Errorf("failed to apply translations: %w", err)
	}

	if err := subfile.Export(translated, outputPath, subfile.ExportOptions{
		Bilingual: overlay,
	}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Infow("Translation completed",
		"entries", len(translated),
		"output", outputPath,
	)
	fmt.Printf("Translated %d cues to %s\n", len(translated), outputPath)
	return nil
}

func buildTranslator(
	ctx context.Context,
	provider translate.Provider,
	apiKey string,
	opts translate.Options,
) (translate.Translator, error) {
	if provider == translate.ProviderBackend {
		client := api.NewClient(
			cfg.BaseURL, cfg.APITimeout, cfg.TranslateTimeout, logger,
		)
		return translate.NewBackendTranslator(client, opts)
	}

	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar(provider))
	}
	if apiKey == "" {
		return nil, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnvVar(provider),
		)
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	return translator, nil
}

func apiKeyEnvVar(provider translate.Provider) string {
	switch provider {
	case translate.ProviderGemini:
		return "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}
