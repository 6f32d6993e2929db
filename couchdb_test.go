package couchdb

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/hashicorp/go-hclog"
	"gitlab.com/flimzy/testy"
)

func TestNew(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		_, err := New(Config{URL: "http://example.com/"}, nil)
		if KindOf(err) != KindArgument {
			t.Errorf("Unexpected kind: %s", KindOf(err))
		}
		var kivikErr *kivik.Error
		if !errors.As(err, &kivikErr) {
			t.Fatalf("Expected *kivik.Error, got %T", err)
		}
		if kivikErr.Status != http.StatusBadRequest {
			t.Errorf("Unexpected status: %d", kivikErr.Status)
		}
	})
	t.Run("missing URL", func(t *testing.T) {
		_, err := New(Config{Database: "db"}, nil)
		if KindOf(err) != KindTransport {
			t.Errorf("Unexpected kind: %s", KindOf(err))
		}
		testy.StatusError(t, "parse : no URL specified", http.StatusBadGateway, err)
	})
	t.Run("credentials without username", func(t *testing.T) {
		_, err := New(Config{URL: "http://:secret@example.com/", Database: "db"}, nil)
		if KindOf(err) != KindArgument {
			t.Errorf("Unexpected kind: %s", KindOf(err))
		}
		testy.StatusError(t, "basic auth: username required", http.StatusBadRequest, err)
	})
	t.Run("success", func(t *testing.T) {
		cfg := Config{URL: "http://example.com/", Database: "db"}
		c, err := New(cfg, nil)
		testy.Error(t, "", err)
		if d := testy.DiffInterface(cfg, c.Config()); d != nil {
			t.Error(d)
		}
		if dsn := c.Transport().DSN(); dsn != "http://example.com/" {
			t.Errorf("Unexpected DSN: %s", dsn)
		}
	})
}

func TestClientRequests(t *testing.T) {
	var got *http.Request
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"xds","_rev":"1-abc"}`))
	}))
	defer s.Close()
	dsn := strings.Replace(s.URL, "http://", "http://admin:secret@", 1)
	c, err := New(Config{URL: dsn, Database: "my db"}, &Options{UserAgents: []string{"test/1.0"}})
	if err != nil {
		t.Fatal(err)
	}
	doc := &person{}
	if err := c.Fetch(context.Background(), "xds", doc); err != nil {
		t.Fatal(err)
	}
	if doc.Rev != "1-abc" {
		t.Errorf("Unexpected rev: %s", doc.Rev)
	}
	user, pass, ok := got.BasicAuth()
	if !ok || user != "admin" || pass != "secret" {
		t.Errorf("Unexpected credentials: %s/%s (%t)", user, pass, ok)
	}
	if path := got.URL.EscapedPath(); path != "/my%20db/xds" {
		t.Errorf("Unexpected path: %s", path)
	}
	expectedUA := "sofa-chttp/1.0 couchdb/" + Version + " test/1.0"
	if ua := got.Header.Get("User-Agent"); ua != expectedUA {
		t.Errorf("Unexpected User-Agent: %s", ua)
	}
}

func TestClientLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Output: buf,
		Level:  hclog.Debug,
	})
	r := &recorder{responses: []*http.Response{
		etagResponse(`"1-abc"`),
		jsonResponse(http.StatusCreated, `{"ok":true,"id":"xds","rev":"2-def"}`),
	}}
	c := newCustomClientOpts(r.roundTrip, &Options{Logger: logger})
	if err := c.Update(context.Background(), &plainDoc{ID: "xds"}, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"test.http: request: method=HEAD",
		"test: probed revision: id=xds rev=1-abc",
		"test: update: id=xds rev=1-abc",
		"test.http: request: method=POST",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Log output missing %q:\n%s", want, out)
		}
	}
}
