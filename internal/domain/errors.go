package domain

import "errors"

// Sentinel errors classifying remote and local failures
var (
	// ErrNetworkUnavailable indicates the remote source is unreachable
	// (no connectivity, host resolution failure, connection refused)
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrTimeout indicates the remote request exceeded its deadline
	ErrTimeout = errors.New("request timed out")

	// ErrProtocol indicates a malformed or unexpected remote response
	ErrProtocol = errors.New("unexpected server response")

	// ErrStoreFailure indicates a local persistence error
	ErrStoreFailure = errors.New("local store failure")
)

// ErrorMessage maps an error to the human-readable text surfaced in the UI.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNetworkUnavailable):
		return "No internet connection"
	case errors.Is(err, ErrTimeout):
		return "Connection timeout. Check your internet connection."
	case errors.Is(err, ErrProtocol):
		return "Network error. Please check your connection."
	case errors.Is(err, ErrStoreFailure):
		return "Failed to update local data"
	case err != nil:
		return err.Error()
	default:
		return "Unknown error"
	}
}
