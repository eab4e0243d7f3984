package fetch

import "errors"

// Failure reasons carried by FetchError.
const (
	ReasonScriptError = "script error"
	ReasonTimeout     = "timeout"
)

// Sentinel errors matched by FetchError.Is.
var (
	ErrTransport = errors.New("wishes transport failure")
	ErrTimeout   = errors.New("wishes request timed out")
)

// FetchError reports that the wish list could not be loaded: the request
// failed, or no callback fired before the timeout.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	msg := "failed to load wishes - " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport for every FetchError and ErrTimeout for timeouts.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrTimeout:
		return e.Reason == ReasonTimeout
	default:
		return false
	}
}

// IsTimeout reports whether err is a fetch timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
