package couchdb

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb/chttp"
)

// CreateDB creates the client's database. The server's reply, typically
// {"ok":true}, is decoded into dest if dest is non-nil.
func (c *Client) CreateDB(ctx context.Context, dest interface{}) error {
	raw, err := c.transport.Put(ctx, c.dbPath())
	if err != nil {
		return transportErr(err)
	}
	return c.decodeResult(raw, dest)
}

// DestroyDB deletes the client's database and every document in it.
func (c *Client) DestroyDB(ctx context.Context, dest interface{}) error {
	raw, err := c.transport.Delete(ctx, c.dbPath())
	if err != nil {
		return transportErr(err)
	}
	return c.decodeResult(raw, dest)
}

// DBExists reports whether the client's database exists.
func (c *Client) DBExists(ctx context.Context) (bool, error) {
	resp, err := c.transport.DoError(ctx, http.MethodHead, c.dbPath(), nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() // nolint: errcheck
	}
	var httpErr *chttp.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusNotFound {
			return false, nil
		}
		return false, &Error{Kind: KindDatabase, Err: httpDBError(httpErr)}
	case err != nil:
		return false, transportErr(err)
	}
	return true, nil
}

// Fetch reads the document id and decodes it into dest. It does not touch
// revision state: the revision, if dest has a _rev field, comes from the
// document body.
func (c *Client) Fetch(ctx context.Context, id string, dest interface{}) error {
	if id == "" {
		return missingArg("docID")
	}
	raw, err := c.transport.Get(ctx, c.docPath(id))
	if err != nil {
		return transportErr(err)
	}
	return c.decodeResult(raw, dest)
}

// Put posts body to the database as is, with no revision handling. A body
// without an _id gets a server-generated one. A string, []byte or
// json.RawMessage body is sent verbatim as JSON.
func (c *Client) Put(ctx context.Context, body interface{}, dest interface{}) error {
	if body == nil {
		return missingArg("document")
	}
	return c.post(ctx, body, dest)
}

func (c *Client) post(ctx context.Context, body interface{}, dest interface{}) error {
	data, err := chttp.EncodeBody(body)
	if err != nil {
		return &Error{Kind: KindSerialization, Err: err}
	}
	raw, err := c.transport.PostJSON(ctx, c.dbPath(), json.RawMessage(data))
	if err != nil {
		return transportErr(err)
	}
	return c.decodeResult(raw, dest)
}
