package llm

import "errors"

var (
	// ErrLLMUnavailable indicates the model backend is unreachable.
	ErrLLMUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the backend answered without any usable text.
	ErrInvalidOutput = errors.New("invalid llm output")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrRateLimited indicates the request was throttled, locally or by the provider.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrUnknownProvider indicates ITINERA_LLM_PROVIDER names no supported backend.
	ErrUnknownProvider = errors.New("unknown llm provider")
)
