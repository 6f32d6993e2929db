package couchdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Result is the reply to a successful write.
type Result struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// Rev returns the current revision of the document id, as reported by the
// ETag header of a HEAD request. A missing document, or any response without
// a usable ETag, yields a KindProtocol error wrapping ErrInvalidETag.
func (c *Client) Rev(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", missingArg("docID")
	}
	headers, err := c.transport.Head(ctx, c.docPath(id))
	if err != nil {
		return "", transportErr(err)
	}
	rev := strings.Trim(headers[etagHeader], `"`)
	if rev == "" {
		return "", &Error{Kind: KindProtocol, Err: errors.Wrapf(ErrInvalidETag, "document %q", id)}
	}
	c.logger.Debug("probed revision", "id", id, "rev", rev)
	return rev, nil
}

// ensureRev makes sure doc carries a revision, probing the server for it if
// necessary. It makes at most one request.
func (c *Client) ensureRev(ctx context.Context, id string, doc Document) error {
	if doc.DocRev() != "" {
		return nil
	}
	rev, err := c.Rev(ctx, id)
	if err != nil {
		return err
	}
	doc.SetDocRev(rev)
	return nil
}

// Update writes doc over its stored version. If doc carries no revision, the
// current one is first fetched with a HEAD request and set on doc, so an
// update costs at most two requests. The server's reply (see Result) is
// decoded into dest if dest is non-nil. doc itself is not modified after the
// write; a caller that keeps using it should take the new revision from the
// reply.
//
// A stale revision is rejected by the server with a conflict (see
// IsConflict); it is not retried.
func (c *Client) Update(ctx context.Context, doc Document, dest interface{}) error {
	id, err := identify(doc)
	if err != nil {
		return err
	}
	if err := c.ensureRev(ctx, id, doc); err != nil {
		return err
	}
	c.logger.Debug("update", "id", id, "rev", doc.DocRev())
	return c.post(ctx, doc, dest)
}

// Save writes doc, creating it if it does not exist. A document without a
// revision is probed once; if the server knows no revision for it, it is
// posted without one, which the server treats as a create. Like Update, Save
// makes at most two requests.
func (c *Client) Save(ctx context.Context, doc Document, dest interface{}) error {
	id, err := identify(doc)
	if err != nil {
		return err
	}
	if err := c.ensureRev(ctx, id, doc); err != nil {
		if !errors.Is(err, ErrInvalidETag) {
			return err
		}
		c.logger.Debug("no current revision, creating", "id", id)
	}
	return c.post(ctx, doc, dest)
}

// Delete deletes doc. A missing revision is fetched first, as for Update.
func (c *Client) Delete(ctx context.Context, doc Document, dest interface{}) error {
	id, err := identify(doc)
	if err != nil {
		return err
	}
	if err := c.ensureRev(ctx, id, doc); err != nil {
		return err
	}
	return c.deleteRev(ctx, id, doc.DocRev(), dest)
}

// DeleteByID deletes the current revision of the document id. It always
// probes for the revision first.
func (c *Client) DeleteByID(ctx context.Context, id string, dest interface{}) error {
	rev, err := c.Rev(ctx, id)
	if err != nil {
		return err
	}
	return c.deleteRev(ctx, id, rev, dest)
}

func (c *Client) deleteRev(ctx context.Context, id, rev string, dest interface{}) error {
	c.logger.Debug("delete", "id", id, "rev", rev)
	raw, err := c.transport.Delete(ctx, c.revPath(id, rev))
	if err != nil {
		return transportErr(err)
	}
	return c.decodeResult(raw, dest)
}
