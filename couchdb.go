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

package couchdb

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb/chttp"
)

// Config identifies the server and database a Client talks to.
type Config struct {
	// URL is the base URL of the server. It may embed user:pass@ credentials,
	// which are sent as HTTP Basic Auth.
	URL string
	// Database is the name of the target database.
	Database string
}

// Options tunes a Client. The zero value is usable.
type Options struct {
	// Logger receives debug output for every request and revision probe. A
	// nil Logger disables logging.
	Logger hclog.Logger

	// HTTPClient is used for all requests. If nil, a new *http.Client is
	// created.
	HTTPClient *http.Client

	// RawEnvelope disables error-envelope detection. Set it only for
	// databases whose documents may legitimately carry both an "error" and
	// a "reason" field; server errors are then decoded like any other
	// response.
	RawEnvelope bool

	// UserAgents are appended to the User-Agent header.
	UserAgents []string
}

// Client performs revision-aware document operations against a single
// database. It holds no mutable state of its own, and is safe for concurrent
// use.
type Client struct {
	transport   *chttp.Client
	config      Config
	logger      hclog.Logger
	rawEnvelope bool
}

// New returns a Client for the database described by cfg. opts may be nil.
func New(cfg Config, opts *Options) (*Client, error) {
	if cfg.Database == "" {
		return nil, missingArg("database name")
	}
	if opts == nil {
		opts = &Options{}
	}
	transport, err := chttp.New(opts.HTTPClient, cfg.URL)
	var authErr *chttp.AuthError
	switch {
	case errors.As(err, &authErr):
		return nil, authConfigErr(err)
	case err != nil:
		return nil, transportErr(err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	transport.UserAgents = append([]string{"couchdb/" + Version}, opts.UserAgents...)
	transport.SetLogger(logger.Named("http"))
	return &Client{
		transport:   transport,
		config:      cfg,
		logger:      logger,
		rawEnvelope: opts.RawEnvelope,
	}, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config
}

// Transport returns the underlying HTTP transport, for installing an
// authenticator or issuing requests the Client does not cover.
func (c *Client) Transport() *chttp.Client {
	return c.transport
}
