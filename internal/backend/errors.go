package backend

import "fmt"

// NetworkError is a transport failure talking to the backend.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s: request failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: returned status %d: %s", e.Endpoint, e.Code, e.Body)
}

// ResponseShapeError means the backend answered with JSON that does not
// match the schema for the endpoint.
type ResponseShapeError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *ResponseShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: malformed response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("backend %s: malformed response: %s", e.Endpoint, e.Reason)
}

func (e *ResponseShapeError) Unwrap() error { return e.Err }
