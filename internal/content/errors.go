package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned when no Gemini key is configured.
	ErrNoAPIKey = errors.New("content: API key required")

	// ErrMalformed is returned when a model answer cannot be used.
	ErrMalformed = errors.New("content: malformed response")

	// ErrUnsolvable is returned for a maze with no path from start to exit.
	ErrUnsolvable = errors.New("content: maze has no path from start to exit")

	// ErrNoModels is returned when the candidate list is empty.
	ErrNoModels = errors.New("content: no candidate models")
)

// APIError is a non-2xx answer from the generation service.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Model      string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini [%s]: API error %d (%s): %s", e.Model, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini [%s]: API error %d: %s", e.Model, e.StatusCode, e.Message)
}

// IsRateLimited returns true for HTTP 429.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == 429 }

// IsNotFound returns true for HTTP 404, which Gemini answers for models that
// are retired or not offered in the caller's region.
func (e *APIError) IsNotFound() bool { return e.StatusCode == 404 }

// IsUnauthorized returns true for a rejected key.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// ChainError collects the failure of every candidate model.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "gemini chain: no errors recorded"
	case 1:
		return fmt.Sprintf("gemini chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("gemini chain: all %d models failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap exposes every model error to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}
