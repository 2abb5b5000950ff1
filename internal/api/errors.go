package api

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx); client errors (4xx)
// are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// distinct, user-surfaceable outcomes of a translate request; never
// collapsed into one generic failure
type TranslateErrorKind int

const (
	// the extended translation deadline elapsed
	TranslateTimeout TranslateErrorKind = iota
	// the request was rejected (empty text, bad language tag)
	TranslateInvalidInput
	// the translation service itself failed
	TranslateServiceError
)

func (k TranslateErrorKind) String() string {
	switch k {
	case TranslateTimeout:
		return "timeout"
	case TranslateInvalidInput:
		return "invalid input"
	default:
		return "service error"
	}
}

type TranslateError struct {
	Kind TranslateErrorKind
	Err  error
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("translation failed (%s): %v", e.Kind, e.Err)
}

func (e *TranslateError) Unwrap() error {
	return e.Err
}

// extracts the translate failure kind; ok is false for non-translate errors
func TranslateKind(err error) (TranslateErrorKind, bool) {
	var te *TranslateError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
