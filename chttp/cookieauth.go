// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.


package chttp

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

// CookieAuth authenticates with a CouchDB session cookie. The session is
// started with POST /_session before the first request, and started again
// once it expires or the server answers 401.
//
// A CookieAuth holds session state, so it can be installed on one Client
// only.
type CookieAuth struct {
	Username string `json:"name"`
	Password string `json:"password"`

	client *Client

	mu     sync.Mutex
	active bool
	// renewAt is when the session is due for renewal. Zero means the server
	// gave no expiry, so the session lasts until it is rejected.
	renewAt time.Time
}

var _ Authenticator = &CookieAuth{}

// Authenticate installs session handling on the client, and a cookie jar if
// it has none.
func (a *CookieAuth) Authenticate(c *Client) error {
	if a.Username == "" {
		return &AuthError{Scheme: "cookie", Err: errors.New("username required")}
	}
	if a.client != nil {
		return &AuthError{Scheme: "cookie", Err: errors.New("already installed on a client")}
	}
	a.client = c
	if c.Jar == nil {
		// cookiejar.New never returns an error
		c.Jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}
	c.wrapTransport(func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return a.roundTrip(next, req)
		})
	})
	return nil
}

// Cookie returns the current session cookie, or nil if there is none.
func (a *CookieAuth) Cookie() *http.Cookie {
	if a.client == nil || a.client.Jar == nil {
		return nil
	}
	for _, cookie := range a.client.Jar.Cookies(a.client.dsn) {
		if cookie.Name == kivik.SessionCookieName {
			return cookie
		}
	}
	return nil
}

type sessionRequestKey struct{}

func (a *CookieAuth) roundTrip(next http.RoundTripper, req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if ctx.Value(sessionRequestKey{}) != nil {
		return next.RoundTrip(req)
	}
	if err := a.startSession(ctx); err != nil {
		return nil, err
	}
	// The jar was read before the session existed, so the cookie is set
	// here.
	if cookie := a.Cookie(); cookie != nil {
		cookies := req.Cookies()
		req = req.Clone(ctx)
		req.Header.Del("Cookie")
		for _, c := range cookies {
			if c.Name != kivik.SessionCookieName {
				req.AddCookie(c)
			}
		}
		req.AddCookie(cookie)
	}
	resp, err := next.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		a.endSession()
	}
	return resp, err
}

// startSession posts the credentials to /_session unless a live session
// exists.
func (a *CookieAuth) startSession(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active && (a.renewAt.IsZero() || time.Now().Before(a.renewAt)) {
		return nil
	}
	ctx = context.WithValue(ctx, sessionRequestKey{}, true)
	resp, err := a.client.DoError(ctx, http.MethodPost, "/_session", &Options{
		GetBody: BodyEncoder(a),
	})
	if err != nil {
		return &AuthError{Scheme: "cookie", Err: err}
	}
	closeBody(resp)
	a.active = true
	a.renewAt = time.Time{}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == kivik.SessionCookieName && !cookie.Expires.IsZero() {
			a.renewAt = cookie.Expires.Add(-time.Minute)
		}
	}
	a.client.logger.Debug("session started", "user", a.Username, "renew_at", a.renewAt)
	return nil
}

// endSession forgets the session and drops its cookie.
func (a *CookieAuth) endSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = false
	if cookie := a.Cookie(); cookie != nil {
		cookie.Path = "/"
		cookie.MaxAge = -1
		a.client.Jar.SetCookies(a.client.dsn, []*http.Cookie{cookie})
	}
	a.client.logger.Debug("session rejected", "user", a.Username)
}
