package couchdb

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

type customTransport func(*http.Request) (*http.Response, error)

var _ http.RoundTripper = customTransport(nil)

func (c customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return c(req)
}

func newCustomClient(fn func(*http.Request) (*http.Response, error)) *Client {
	return newCustomClientOpts(fn, &Options{})
}

func newCustomClientOpts(fn func(*http.Request) (*http.Response, error), opts *Options) *Client {
	opts.HTTPClient = &http.Client{Transport: customTransport(fn)}
	c, err := New(Config{URL: "http://example.com/", Database: "testdb"}, opts)
	if err != nil {
		panic(err)
	}
	return c
}

func newTestClient(resp *http.Response, err error) *Client {
	return newCustomClient(func(req *http.Request) (*http.Response, error) {
		if resp != nil {
			resp.Request = req
		}
		return resp, err
	})
}

func Body(str string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(str))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       Body(body),
	}
}

func etagResponse(etag string) *http.Response {
	header := http.Header{}
	if etag != "" {
		header.Set("ETag", etag)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       Body(""),
	}
}

// call is a request as seen by a recorder.
type call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// recorder answers requests with a fixed sequence of responses, and records
// each request it receives.
type recorder struct {
	mu        sync.Mutex
	responses []*http.Response
	calls     []call
}

func (r *recorder) roundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := call{
		Method: req.Method,
		Path:   req.URL.EscapedPath(),
		Query:  req.URL.RawQuery,
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		c.Body = string(body)
	}
	r.calls = append(r.calls, c)
	if len(r.responses) == 0 {
		return jsonResponse(http.StatusInternalServerError, `{"error":"unexpected","reason":"no response queued"}`), nil
	}
	resp := r.responses[0]
	r.responses = r.responses[1:]
	resp.Request = req
	return resp, nil
}

func newRecorderClient(responses ...*http.Response) (*Client, *recorder) {
	r := &recorder{responses: responses}
	return newCustomClient(r.roundTrip), r
}

// person is a document type used throughout the tests.
type person struct {
	Doc
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

func (p *person) DeriveID() string { return HashID(p.Name) }

// plainDoc implements Document without IDSetter.
type plainDoc struct {
	ID     string   `json:"_id"`
	Rev    string   `json:"_rev,omitempty"`
	Fields []string `json:"fields"`
	derive string
}

func (d *plainDoc) DeriveID() string     { return d.derive }
func (d *plainDoc) DocID() string        { return d.ID }
func (d *plainDoc) DocRev() string       { return d.Rev }
func (d *plainDoc) SetDocRev(rev string) { d.Rev = rev }
