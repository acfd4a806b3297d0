package errors

import "fmt"

// ErrorType classifies a failed API call
type ErrorType string

const (
	// ErrorTypeRateLimited is the rate-limit signal; the gateway recovers
	// from it transparently after a cooldown.
	ErrorTypeRateLimited ErrorType = "rate_limited"
	// ErrorTypeAccessRestricted covers protected resources; recovery is
	// purpose specific (sentinel, batch split, pagination cutoff).
	ErrorTypeAccessRestricted ErrorType = "access_restricted"
	// ErrorTypeResourceGone means the target vanished mid-run. Fatal.
	ErrorTypeResourceGone ErrorType = "resource_gone"
	// ErrorTypeNetwork is a transport-level failure before any status code.
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeUnclassified is any failure shape we do not recognize. Fatal,
	// on purpose: a generic retry here would mask bugs as transient errors.
	ErrorTypeUnclassified ErrorType = "unclassified"
)

// Error is an API call failure with its classification and full request
// context, so fatal paths can report exactly what was being asked for.
type Error struct {
	Type    ErrorType
	Message string
	Code    int    // HTTP status, 0 for transport failures
	APICode int    // API error code from the response body, 0 if absent
	Path    string // endpoint path of the failed call
	Params  string // encoded query parameters of the failed call
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (status %d) at %s: %s", e.Type, e.Code, e.Path, e.Message)
}

// IsFatal reports whether this error class terminates the run.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRateLimited, ErrorTypeAccessRestricted, ErrorTypeNetwork:
		return false
	default:
		return true
	}
}
