package couchdb

import (
	"net/url"

	"github.com/sofa-go/couchdb/chttp"
)

// dbPath returns the escaped path of the client's database.
func (c *Client) dbPath() string {
	return url.PathEscape(c.config.Database)
}

// docPath returns the escaped path of a document within the client's
// database.
func (c *Client) docPath(id string) string {
	return c.dbPath() + "/" + chttp.EncodeDocID(id)
}

// revPath returns docPath with the revision as a query parameter.
func (c *Client) revPath(id, rev string) string {
	return c.docPath(id) + "?" + url.Values{"rev": []string{rev}}.Encode()
}
