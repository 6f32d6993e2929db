package couchdb

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb/chttp"
)

// ServerInfo is the server's welcome message.
type ServerInfo struct {
	Version     string
	Vendor      string
	Features    []string
	RawResponse json.RawMessage
}

type welcome struct {
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Vendor   struct {
		Name string `json:"name"`
	} `json:"vendor"`
}

// ServerInfo returns the server version, as reported by GET /.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	raw, err := c.transport.Get(ctx, "/")
	if err != nil {
		return nil, transportErr(err)
	}
	var w welcome
	if err := c.decodeResult(raw, &w); err != nil {
		return nil, err
	}
	return &ServerInfo{
		Version:     w.Version,
		Vendor:      w.Vendor.Name,
		Features:    w.Features,
		RawResponse: raw,
	}, nil
}

// Ping reports whether the server is up, using the /_up endpoint.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	resp, err := c.transport.DoError(ctx, http.MethodHead, "/_up", nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() // nolint: errcheck
	}
	var httpErr *chttp.HTTPError
	switch {
	case errors.As(err, &httpErr):
		c.logger.Debug("server not up", "status", httpErr.Code)
		return false, nil
	case err != nil:
		return false, transportErr(err)
	}
	return true, nil
}

// Authenticate installs a on the client's transport. It is applied in
// addition to any credentials embedded in the URL, so the two should not be
// combined.
func (c *Client) Authenticate(a chttp.Authenticator) error {
	if a == nil {
		return missingArg("authenticator")
	}
	return authConfigErr(c.transport.Authenticate(a))
}
