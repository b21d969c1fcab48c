package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingImage blocks a submission that has no photo attached.
	ErrMissingImage = errors.New("Please upload an image first.")
	// ErrInvalidImage is returned when the attached file does not decode.
	ErrInvalidImage = errors.New("The selected file could not be read as an image.")
	// ErrImageTooLarge rejects photos above generation.MaxImageBytes.
	ErrImageTooLarge = errors.New("The selected image is larger than 20 MB.")
	// ErrNotAuthenticated is returned before any network call when there is no session token.
	ErrNotAuthenticated = errors.New("Not authenticated")
	// ErrNoCredits means the page should show the upgrade prompt instead of submitting.
	ErrNoCredits = errors.New("You have run out of free credits.")
)

// fallbackMessage is shown when the endpoint fails without an error body.
const fallbackMessage = "Generation failed."

// UpstreamError carries the generation endpoint's error message verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

// IsUpgradeRequired reports whether err should be answered with the upgrade prompt.
// A 403 from the endpoint means the server-side credit check failed.
func IsUpgradeRequired(err error) bool {
	if errors.Is(err, ErrNoCredits) {
		return true
	}
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == 403
}

func newUpstreamError(status int, message string) error {
	if message == "" {
		message = fallbackMessage
	}
	return &UpstreamError{Status: status, Message: message}
}

func wrapTransport(err error) error {
	return fmt.Errorf("call generation endpoint: %w", err)
}
