package chttp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Authenticator installs an authentication scheme on a Client.
type Authenticator interface {
	Authenticate(*Client) error
}

// AuthError is returned when an authenticator is misconfigured, or when the
// server rejects its credentials while a session is being established.
type AuthError struct {
	// Scheme is "basic", "cookie" or "proxy".
	Scheme string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth: %s", e.Scheme, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause, for github.com/pkg/errors.
func (e *AuthError) Cause() error {
	return e.Err
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// wrapTransport replaces the client's transport with the one returned by
// wrap, which is given the transport being replaced.
func (c *Client) wrapTransport(wrap func(next http.RoundTripper) http.RoundTripper) {
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.Transport = wrap(next)
}

// withHeaders returns a transport that sends every request with h set.
// Requests are cloned, never modified.
func withHeaders(next http.RoundTripper, h http.Header) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req = req.Clone(req.Context())
		for key, values := range h {
			req.Header[key] = values
		}
		return next.RoundTrip(req)
	})
}

// BasicAuth sends HTTP Basic Auth credentials with every request.
type BasicAuth struct {
	Username string
	Password string
}

var _ Authenticator = &BasicAuth{}

// Authenticate installs Basic Auth on the client.
func (a *BasicAuth) Authenticate(c *Client) error {
	if a.Username == "" {
		return &AuthError{Scheme: "basic", Err: errors.New("username required")}
	}
	h := http.Header{}
	(&http.Request{Header: h}).SetBasicAuth(a.Username, a.Password)
	c.wrapTransport(func(next http.RoundTripper) http.RoundTripper {
		return withHeaders(next, h)
	})
	return nil
}

// ProxyAuth authenticates against a CouchDB server configured for proxy
// authentication, by sending the user name and roles as request headers.
type ProxyAuth struct {
	Username string
	// Secret, if set, is used to sign Username with HMAC-SHA1.
	Secret string
	Roles  []string

	// Headers optionally renames the X-Auth-CouchDB-* headers, keyed by
	// their default name.
	Headers http.Header
}

var _ Authenticator = &ProxyAuth{}

func (a *ProxyAuth) header(header string) string {
	if h := a.Headers.Get(header); h != "" {
		return http.CanonicalHeaderKey(h)
	}
	return header
}

// Authenticate installs the proxy headers on the client.
func (a *ProxyAuth) Authenticate(c *Client) error {
	if a.Username == "" {
		return &AuthError{Scheme: "proxy", Err: errors.New("username required")}
	}
	h := http.Header{}
	h.Set(a.header("X-Auth-CouchDB-UserName"), a.Username)
	h.Set(a.header("X-Auth-CouchDB-Roles"), strings.Join(a.Roles, ","))
	if a.Secret != "" {
		// https://docs.couchdb.org/en/stable/config/auth.html#couch_httpd_auth/x_auth_token
		mac := hmac.New(sha1.New, []byte(a.Secret))
		_, _ = mac.Write([]byte(a.Username))
		h.Set(a.header("X-Auth-CouchDB-Token"), hex.EncodeToString(mac.Sum(nil)))
	}
	c.wrapTransport(func(next http.RoundTripper) http.RoundTripper {
		return withHeaders(next, h)
	})
	return nil
}
