package couchdb

import (
	"fmt"
	"net/http"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb/chttp"
)

// Kind classifies the errors returned by a Client.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	// KindTransport is a network, TLS or protocol failure, or a response
	// body that was not valid JSON.
	KindTransport
	// KindDatabase is a structured rejection reported by the server, such as
	// not_found or conflict. The cause is a *DatabaseError.
	KindDatabase
	// KindSerialization means a payload did not match the requested shape.
	KindSerialization
	// KindProtocol means the server broke an expectation of the revision
	// protocol, such as a HEAD response without a usable ETag.
	KindProtocol
	// KindArgument means the call was rejected before any request was made.
	KindArgument
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDatabase:
		return "database"
	case KindSerialization:
		return "serialization"
	case KindProtocol:
		return "protocol"
	case KindArgument:
		return "argument"
	}
	return "unknown"
}

// ErrInvalidETag is the cause of a KindProtocol error, when a revision probe
// did not return a usable ETag header.
var ErrInvalidETag = errors.New("invalid etag header")

// Error is the single error type returned by Client methods.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error, for github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

// StatusCode returns the HTTP status most closely associated with the error.
func (e *Error) StatusCode() int {
	var coder interface{ StatusCode() int }
	if errors.As(e.Err, &coder) {
		return coder.StatusCode()
	}
	var kivikErr *kivik.Error
	if errors.As(e.Err, &kivikErr) {
		return kivikErr.HTTPStatus()
	}
	switch e.Kind {
	case KindTransport, KindProtocol:
		return http.StatusBadGateway
	case KindArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DatabaseError is the error envelope returned by the server:
//
//	{"error": "conflict", "reason": "Document update conflict."}
type DatabaseError struct {
	Code   string
	Reason string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s, reason: %s", e.Code, e.Reason)
}

var dbErrorStatus = map[string]int{
	"bad_request":         http.StatusBadRequest,
	"unauthorized":        http.StatusUnauthorized,
	"forbidden":           http.StatusForbidden,
	"not_found":           http.StatusNotFound,
	"conflict":            http.StatusConflict,
	"file_exists":         http.StatusPreconditionFailed,
	"precondition_failed": http.StatusPreconditionFailed,
}

// StatusCode maps the CouchDB error code to the HTTP status the server sends
// with it.
func (e *DatabaseError) StatusCode() int {
	if status, ok := dbErrorStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// KindOf returns the Kind of err, or KindUnknown if err was not returned by
// a Client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsConflict reports whether err is a document update conflict.
func IsConflict(err error) bool {
	return dbErrorCode(err) == "conflict"
}

// IsNotFound reports whether err is a not_found database error.
func IsNotFound(err error) bool {
	return dbErrorCode(err) == "not_found"
}

func dbErrorCode(err error) string {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return ""
}

// transportErr classifies an error returned by the transport. A session the
// server refused is a database error; anything else is a transport error.
func transportErr(err error) error {
	if err == nil {
		return nil
	}
	var authErr *chttp.AuthError
	var httpErr *chttp.HTTPError
	if errors.As(err, &authErr) && errors.As(authErr.Err, &httpErr) {
		return &Error{Kind: KindDatabase, Err: errors.WithMessage(httpDBError(httpErr), authErr.Scheme+" auth")}
	}
	return &Error{Kind: KindTransport, Err: err}
}

// authConfigErr marks a failure to install an authenticator.
func authConfigErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindArgument, Err: err}
}

// httpDBError converts an error status to a database error. The server's
// error and reason are used when the response carried them; HEAD responses
// never do.
func httpDBError(httpErr *chttp.HTTPError) *DatabaseError {
	if httpErr.Kind != "" {
		return &DatabaseError{Code: httpErr.Kind, Reason: httpErr.Reason}
	}
	code := "unknown_error"
	for c, status := range dbErrorStatus {
		if status == httpErr.Code && c != "file_exists" {
			code = c
		}
	}
	return &DatabaseError{Code: code, Reason: http.StatusText(httpErr.Code)}
}

func missingArg(arg string) error {
	return &Error{
		Kind: KindArgument,
		Err:  &kivik.Error{Status: http.StatusBadRequest, Err: fmt.Errorf("couchdb: %s required", arg)},
	}
}
