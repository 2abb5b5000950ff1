package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/subcue/subcue/internal/logging"
	"github.com/subcue/subcue/internal/subtitle"
)

// Client talks to the project backend's REST surface. Payload shapes are
// backend-owned; the wire boundary in the subtitle package maps them onto
// the canonical cue type.
type Client struct {
	baseURL string
	logger  *logging.Logger

	httpClient *http.Client

	// translation latency is materially higher than CRUD latency, so
	// translate-text requests run on their own client with an extended
	// timeout
	translateClient *http.Client
}

func NewClient(baseURL string, apiTimeout, translateTimeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		baseURL:         baseURL,
		logger:          logger,
		httpClient:      &http.Client{Timeout: apiTimeout},
		translateClient: &http.Client{Timeout: translateTimeout},
	}
}

// ListSubtitles fetches the project's cue collection
func (c *Client) ListSubtitles(ctx context.Context, projectID string) ([]subtitle.Subtitle, error) {
	url := fmt.Sprintf("%s/projects/%s/subtitles", c.baseURL, projectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return subtitle.DecodeWireList(body)
}

// ReplaceSubtitles persists the full cue collection for the project
func (c *Client) ReplaceSubtitles(ctx context.Context, projectID string, cues []subtitle.Subtitle) error {
	payload, err := subtitle.EncodeWireList(cues)
	if err != nil {
		return fmt.Errorf("encode subtitles: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/subtitles", c.baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debugw("saving subtitles to backend",
		"project_id", projectID,
		"count", len(cues),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replace subtitles: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

type TranslateTextRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateTextResponse struct {
	Translation string `json:"translation"`
}

// TranslateText translates a single text via the backend. Failures come
// back as typed kinds: timeout, invalid input, or service error.
func (c *Client) TranslateText(ctx context.Context, reqBody TranslateTextRequest) (string, error) {
	if reqBody.Text == "" {
		return "", &TranslateError{Kind: TranslateInvalidInput, Err: errors.New("text is required")}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/translate-text", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.translateClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &TranslateError{Kind: TranslateTimeout, Err: err}
		}
		return "", &TranslateError{Kind: TranslateServiceError, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return "", &TranslateError{
			Kind: TranslateInvalidInput,
			Err:  &APIError{StatusCode: resp.StatusCode, Body: string(body)},
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &TranslateError{
			Kind: TranslateServiceError,
			Err:  &APIError{StatusCode: resp.StatusCode, Body: string(body)},
		}
	}

	var out translateTextResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &TranslateError{Kind: TranslateServiceError, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Translation, nil
}

type TranslateProjectResponse struct {
	Message        string `json:"message"`
	ProjectID      string `json:"project_id"`
	Status         string `json:"status"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// TranslateProject kicks off whole-project translation on the backend;
// fire-and-forget, progress arrives over the push channel or by polling
func (c *Client) TranslateProject(ctx context.Context, projectID, sourceLang, targetLang string) (*TranslateProjectResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"source_language": sourceLang,
		"target_language": targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/translate", c.baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request project translation: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out TranslateProjectResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
