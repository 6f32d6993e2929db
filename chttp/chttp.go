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

// Package chttp provides a minimal HTTP transport for talking to a CouchDB
// server. Responses are returned as raw JSON values; interpreting them is
// left to the caller.
package chttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

const (
	typeJSON = "application/json"

	// userAgent is the base User-Agent sent with every request.
	userAgent = "sofa-chttp/1.0"
)

// Client represents a client connection. It embeds an *http.Client
type Client struct {
	// UserAgents is appended to set the User-Agent header. Typically it should
	// contain pairs of product name and version.
	UserAgents []string

	*http.Client

	dsn    *url.URL
	logger hclog.Logger
}

// New returns a connection to a remote CouchDB server. If client is nil,
// a new *http.Client is used. Otherwise client is copied, so authenticators
// installed later never alter it. If credentials are included in the URL,
// they are stripped from it and sent as HTTP Basic Auth on every request.
func New(client *http.Client, dsn string) (*Client, error) {
	dsnURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{}
	} else {
		cc := *client
		client = &cc
	}
	user := dsnURL.User
	dsnURL.User = nil
	c := &Client{
		Client: client,
		dsn:    dsnURL,
		logger: hclog.NewNullLogger(),
	}
	if user != nil {
		password, _ := user.Password()
		if err := c.Authenticate(&BasicAuth{
			Username: user.Username(),
			Password: password,
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &TransportError{Method: "parse", URL: dsn, Err: errors.New("no URL specified")}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return nil, &TransportError{Method: "parse", URL: dsn, Err: err}
	}
	if dsnURL.Path == "" {
		dsnURL.Path = "/"
	}
	return dsnURL, nil
}

// DSN returns the base URL, without credentials.
func (c *Client) DSN() string {
	return c.dsn.String()
}

// SetLogger sets the logger used for per-request debug output. A nil logger
// disables logging.
func (c *Client) SetLogger(logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	c.logger = logger
}

// Authenticate installs the provided authenticator on the client.
func (c *Client) Authenticate(a Authenticator) error {
	return a.Authenticate(c)
}

// URL resolves path against the client's base URL. path may carry a query
// string, and is expected to be escaped already (see EncodeDocID).
func (c *Client) URL(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	u := *c.dsn
	rawPath := strings.TrimSuffix(c.dsn.EscapedPath(), "/") + "/" + strings.TrimPrefix(ref.EscapedPath(), "/")
	if u.Path, err = url.PathUnescape(rawPath); err != nil {
		return nil, err
	}
	u.RawPath = rawPath
	u.RawQuery = ref.RawQuery
	return &u, nil
}

// NewRequest returns a new *http.Request to the CouchDB server, and the
// specified path. The host, schema, etc, of the specified path are ignored.
func (c *Client) NewRequest(ctx context.Context, method, path string, opts *Options) (*http.Request, error) {
	u, err := c.URL(path)
	if err != nil {
		return nil, &TransportError{Method: method, URL: path, Err: err}
	}
	getBody, err := opts.getBody()
	if err != nil {
		return nil, &TransportError{Method: method, URL: u.String(), Err: err}
	}
	var body io.Reader
	if getBody != nil {
		rc, err := getBody()
		if err != nil {
			return nil, &TransportError{Method: method, URL: u.String(), Err: err}
		}
		body = rc
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u.String(), Err: err}
	}
	req.GetBody = getBody
	c.setHeaders(req, opts, body != nil)
	return req, nil
}

func (c *Client) setHeaders(req *http.Request, opts *Options, hasBody bool) {
	accept := typeJSON
	contentType := typeJSON
	if opts != nil {
		if opts.Accept != "" {
			accept = opts.Accept
		}
		if opts.ContentType != "" {
			contentType = opts.ContentType
		}
	}
	req.Header.Set("Accept", accept)
	if hasBody {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", strings.Join(append([]string{userAgent}, c.UserAgents...), " "))
}

// DoReq does an HTTP request. An error is returned only if there was an
// error processing the request. In particular, an error status code, such
// as 400 or 500, does _not_ cause an error to be returned.
func (c *Client) DoReq(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	req, err := c.NewRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}
	trace := ContextClientTrace(ctx)
	trace.request(req)
	resp, err := c.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", req.URL.String(), "error", err)
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &TransportError{Method: method, URL: req.URL.String(), Err: err}
	}
	if resp.Request == nil {
		resp.Request = req
	}
	c.logger.Debug("request", "method", method, "url", req.URL.String(), "status", resp.StatusCode)
	if err := trace.response(resp); err != nil {
		return nil, &TransportError{Method: method, URL: req.URL.String(), Err: errors.Wrap(err, "read response")}
	}
	return resp, nil
}

// DoError is the same as DoReq(), followed by checking the response for
// error status codes.
func (c *Client) DoError(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	resp, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return resp, err
	}
	return resp, ResponseError(resp)
}

// doValue performs a request and decodes the response body, whatever its
// status, as a single JSON value.
func (c *Client) doValue(ctx context.Context, method, path string, opts *Options) (json.RawMessage, error) {
	resp, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	var value json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, &TransportError{
			Method: method,
			URL:    resp.Request.URL.String(),
			Err:    errors.Wrap(err, "invalid JSON response"),
		}
	}
	return value, nil
}

// Get performs a GET request and returns the decoded JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doValue(ctx, http.MethodGet, path, nil)
}

// Put performs a PUT request without a body and returns the decoded JSON
// body.
func (c *Client) Put(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doValue(ctx, http.MethodPut, path, nil)
}

// Delete performs a DELETE request and returns the decoded JSON body.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doValue(ctx, http.MethodDelete, path, nil)
}

// PutJSON JSON-encodes body, sends it with a PUT request, and returns the
// decoded JSON response.
func (c *Client) PutJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.doValue(ctx, http.MethodPut, path, &Options{JSON: body})
}

// PostJSON JSON-encodes body, sends it with a POST request, and returns the
// decoded JSON response.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.doValue(ctx, http.MethodPost, path, &Options{JSON: body})
}

// Head performs a HEAD request and returns the response headers, keyed by
// lower-case header name. Header values that are not printable ASCII are
// dropped. The response status is not inspected; a missing resource simply
// yields fewer headers.
func (c *Client) Head(ctx context.Context, path string) (map[string]string, error) {
	resp, err := c.DoReq(ctx, http.MethodHead, path, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	return headerMap(resp.Header), nil
}

func headerMap(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		for _, value := range values {
			if !isHeaderText(value) {
				continue
			}
			headers[strings.ToLower(key)] = value
		}
	}
	return headers
}

// isHeaderText reports whether v consists only of visible ASCII, spaces and
// tabs.
func isHeaderText(v string) bool {
	for i := 0; i < len(v); i++ {
		if b := v[i]; b != '\t' && (b < 0x20 || b > 0x7e) {
			return false
		}
	}
	return true
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
