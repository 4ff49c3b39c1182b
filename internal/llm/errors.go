package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential indicates no API key has been configured.
	ErrNoCredential = errors.New("no api key configured")

	// ErrUnauthorized indicates the endpoint rejected the API key.
	ErrUnauthorized = errors.New("api key rejected")

	// ErrUnavailable indicates the endpoint could not be reached.
	ErrUnavailable = errors.New("llm endpoint unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrEmptyResponse indicates the endpoint answered without any choices.
	ErrEmptyResponse = errors.New("llm returned no choices")

	// ErrInvalidOutput indicates the response text is not well-formed JSON.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRejected indicates the endpoint refused the request with a status
	// that retrying cannot fix.
	ErrRejected = errors.New("llm request rejected")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// statusError is a non-200 answer from the endpoint.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("endpoint returned status %d: %s", e.Code, e.Body)
}

func (e *statusError) retryable() bool {
	return e.Code == 429 || e.Code >= 500
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
