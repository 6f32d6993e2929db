package couchdb

import (
	"bytes"
	"context"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/sofa-go/couchdb/chttp"
)

// WithTraceLog returns a copy of ctx that logs each request made with it,
// and each response with its body, to logger at trace level. If logger is
// not at trace level, ctx is returned unchanged.
func WithTraceLog(ctx context.Context, logger hclog.Logger) context.Context {
	if logger == nil || !logger.IsTrace() {
		return ctx
	}
	return chttp.WithClientTrace(ctx, &chttp.ClientTrace{
		Request: func(req *http.Request) {
			logger.Trace("request", "method", req.Method, "url", req.URL.Redacted())
		},
		Response: func(resp *http.Response, body []byte) {
			logger.Trace("response",
				"status", resp.StatusCode,
				"etag", resp.Header.Get(etagHeader),
				"body", string(bytes.TrimSpace(body)),
			)
		},
	})
}
