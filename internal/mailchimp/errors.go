package mailchimp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// APIError is returned when Mailchimp answers with an unexpected status code.
// Type, Title, Detail and Instance are filled from the problem document Mailchimp sends with errors.
type APIError struct {
	StatusCode int    `json:"-"`
	Body       string `json:"-"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{}
	// the body is not always json (e.g. a proxy error page)
	_ = json.Unmarshal(body, apiErr)
	apiErr.StatusCode = statusCode
	apiErr.Body = string(body)
	return apiErr
}

func (e *APIError) Error() string {
	if len(e.Detail) > 0 {
		return fmt.Sprintf("mailchimp api request failed with status %d: %s - %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("mailchimp api request failed with status %d: %s", e.StatusCode, e.Body)
}

func isErrorStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// IsBadRequest reports whether err is a 400 response from Mailchimp.
func IsBadRequest(err error) bool {
	return isErrorStatus(err, http.StatusBadRequest)
}

// IsUnauthorized reports whether err is a 401 response, usually a wrong api key or server prefix.
func IsUnauthorized(err error) bool {
	return isErrorStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 response, e.g. an unknown list or subscriber.
func IsNotFound(err error) bool {
	return isErrorStatus(err, http.StatusNotFound)
}
