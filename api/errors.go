package api

import "fmt"

// RequestError is returned for any non-2xx API response. The call is not
// retried at this layer; callers decide what to do with the status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Body)
}
