package daraja

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth covers rejected credentials and failures of the token exchange itself.
	ErrAuth = errors.New("daraja: failed to get access token")
	// ErrTimeout is returned when the 30s request bound is exceeded.
	ErrTimeout = errors.New("daraja: request timed out")
	// ErrNetwork covers transport failures that are neither a timeout nor a
	// structured provider rejection.
	ErrNetwork = errors.New("daraja: request failed")
)

// RejectedError is a structured error body returned by the provider
// (HTTP status outside 2xx with a decodable payload).
type RejectedError struct {
	StatusCode int
	Code       string `json:"errorCode"`
	Message    string `json:"errorMessage"`
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daraja: request rejected (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("daraja: request rejected: %s", e.Message)
}
