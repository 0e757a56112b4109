package sampark

import (
	"errors"
	"fmt"
)

// ErrNoBaseURL is returned by every remote call of a client built without
// an API base URL.
var ErrNoBaseURL = errors.New("sampark API URL is not configured")

// APIError is a response the Sampark API flagged as failed, either through
// the envelope's error field or a non-2xx status.
type APIError struct {
	Status  int    // HTTP status
	Code    int    // envelope statusCode, 0 when absent
	Message string // server message or a per-call fallback
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
}

// ResponseError is a response whose body was not JSON, typically an HTML
// error page from a proxy in front of the API.
type ResponseError struct {
	Status      int
	ContentType string
	Body        string // first 200 bytes, trimmed
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return "unexpected response type"
	}
	return e.Body
}

// Message returns the text a user should see for err: the server message of
// an APIError, the body of a ResponseError, or err's own text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Error()
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	return err.Error()
}
