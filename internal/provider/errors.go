package provider

import "errors"

// The engine's provider error taxonomy. Callers are expected to branch with
// errors.Is; everything else wrapping these sentinels is context for logs.
var (
	// ErrInvalidInput marks empty or malformed input. Never retried.
	ErrInvalidInput = errors.New("invalid provider input")

	// ErrExhausted marks a retryable failure that survived the whole retry
	// budget. Surfaced to the caller as an explicit failure.
	ErrExhausted = errors.New("provider retries exhausted")

	// ErrMalformedResponse marks a provider response that did not parse into
	// the expected structure. Never retried; sub-analyses substitute their
	// documented fallback instead of propagating it.
	ErrMalformedResponse = errors.New("malformed provider response")
)
