package apperrors

import "fmt"

// FromHTTPStatus maps an upstream HTTP status to a typed error. service names
// the backend in the user-facing message.
func FromHTTPStatus(service string, code int, cause error) error {
	switch {
	case code == 404:
		return New(KindBadRequest, fmt.Sprintf("%s resource not found or no access (404).", service), cause)
	case code == 400:
		return New(KindBadRequest, fmt.Sprintf("%s request rejected (400).", service), cause)
	case code == 401 || code == 403:
		return New(KindAuth, fmt.Sprintf("%s authentication/authorization failed (%d).", service, code), cause)
	case code == 429:
		return New(KindRateLimit, fmt.Sprintf("%s rate limit exceeded (429). Please try again later.", service), cause)
	case code >= 500:
		return New(KindTransient, fmt.Sprintf("%s service temporary error (%d).", service, code), cause)
	default:
		return New(KindBadRequest, fmt.Sprintf("%s API error (%d).", service, code), cause)
	}
}

// Network marks a failure that never produced an HTTP status.
func Network(service string, cause error) error {
	return New(KindTransient, fmt.Sprintf("%s request failed due to a network/runtime error.", service), cause)
}
