package llm

import "errors"

// Sentinel errors for provider failures. Callers classify turn failures by
// matching these with errors.Is; providers wrap them with request detail.
var (
	// ErrMissingAPIKey indicates no API key was configured for the provider.
	ErrMissingAPIKey = errors.New("llm: missing API key")

	// ErrInvalidCredentials indicates the runtime rejected the configured
	// credentials (HTTP 401/403).
	ErrInvalidCredentials = errors.New("llm: invalid credentials")

	// ErrUnavailable indicates the model runtime could not be reached or
	// returned a server-side failure.
	ErrUnavailable = errors.New("llm: provider unavailable")
)
