package chttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

// TransportError is returned when a request could not be completed, or its
// response could not be read as JSON. It wraps the underlying cause.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause, for github.com/pkg/errors.
func (e *TransportError) Cause() error {
	return e.Err
}

// StatusCode returns the status of the underlying cause if it has one, such
// as a rejected session. Otherwise it is http.StatusBadGateway; no valid
// response was received.
func (e *TransportError) StatusCode() int {
	var coder interface{ StatusCode() int }
	if errors.As(e.Err, &coder) {
		return coder.StatusCode()
	}
	return http.StatusBadGateway
}

// HTTPError is an error that represents an HTTP error status returned by the
// server.
type HTTPError struct {
	Code   int
	Kind   string `json:"error"`
	Reason string `json:"reason"`
}

func (e *HTTPError) Error() string {
	if e.Reason == "" {
		return http.StatusText(e.Code)
	}
	if statusText := http.StatusText(e.Code); statusText != "" {
		return fmt.Sprintf("%s: %s", statusText, e.Reason)
	}
	return e.Reason
}

// StatusCode returns the embedded status code.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// ResponseError returns an error from an *http.Response, if its status code
// is 400 or greater. The response body is consumed and closed in that case.
func ResponseError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	defer closeBody(resp)
	httpErr := &HTTPError{}
	if resp.Request != nil && resp.Request.Method != http.MethodHead && resp.ContentLength != 0 && resp.Body != nil {
		if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct == typeJSON {
			_ = json.NewDecoder(resp.Body).Decode(httpErr)
		}
	}
	httpErr.Code = resp.StatusCode
	return httpErr
}
