package translate

import (
	"context"
	"fmt"

	"github.com/subcue/subcue/internal/api"
)

// implements Translator by delegating each text to the project backend's
// translate-text endpoint; the backend owns provider selection and keys
type BackendTranslator struct {
	client  *api.Client
	options Options
}

func NewBackendTranslator(
	client *api.Client,
	opts Options,
) (*BackendTranslator, error) {
	if client == nil {
		return nil, fmt.Errorf("API client is required")
	}
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	return &BackendTranslator{client: client, options: opts}, nil
}

func (t *BackendTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	// the backend endpoint takes one text per request
	return translateSequential(ctx, items, 1, t.translateOne)
}

func (t *BackendTranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	return translateConcurrent(ctx, items, 1, concurrency, t.translateOne)
}

func (t *BackendTranslator) translateOne(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	if len(items) != 1 {
		return nil, fmt.Errorf("expected single item, got %d", len(items))
	}
	item := items[0]

	translated, err := t.client.TranslateText(ctx, api.TranslateTextRequest{
		Text:           item.Text,
		SourceLanguage: t.options.InputLanguage,
		TargetLanguage: t.options.TargetLanguage,
	})
	if err != nil {
		return nil, err
	}

	return []TranslationResult{{Index: item.Index, Text: translated}}, nil
}
