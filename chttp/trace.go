package chttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

type clientTraceKey struct{}

// ClientTrace is a set of hooks run for each request made with a context
// carrying it. Any hook may be nil.
type ClientTrace struct {
	// Request receives a copy of each outgoing request, without its body.
	Request func(*http.Request)

	// Response receives a copy of each response and its body. Setting it
	// makes the client buffer every response body in memory.
	Response func(resp *http.Response, body []byte)
}

// WithClientTrace returns a copy of ctx carrying trace. A nil trace returns
// ctx unchanged.
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	if trace == nil {
		return ctx
	}
	return context.WithValue(ctx, clientTraceKey{}, trace)
}

// ContextClientTrace returns the ClientTrace carried by ctx, or nil.
func ContextClientTrace(ctx context.Context) *ClientTrace {
	trace, _ := ctx.Value(clientTraceKey{}).(*ClientTrace)
	return trace
}

func (t *ClientTrace) request(req *http.Request) {
	if t == nil || t.Request == nil {
		return
	}
	clone := req.Clone(req.Context())
	clone.Body = nil
	t.Request(clone)
}

// response reports resp to the Response hook. The body is read in full and
// replaced with an in-memory copy.
func (t *ClientTrace) response(resp *http.Response) error {
	if t == nil || t.Response == nil {
		return nil
	}
	var body []byte
	if resp.Body != nil {
		var err error
		body, err = io.ReadAll(resp.Body)
		closeBody(resp)
		if err != nil {
			return err
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	clone := *resp
	clone.Body = nil
	t.Response(&clone, body)
	return nil
}
