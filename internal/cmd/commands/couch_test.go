package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// fakeCouch is an in-memory server implementing the subset of the CouchDB
// API the client uses, for a single database.
type fakeCouch struct {
	mu     sync.Mutex
	db     string
	exists bool
	docs   map[string]map[string]interface{}
	seq    int
}

func newFakeCouch(db string, exists bool) *fakeCouch {
	return &fakeCouch{
		db:     db,
		exists: exists,
		docs:   map[string]map[string]interface{}{},
	}
}

func (f *fakeCouch) dbExists() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists
}

func (f *fakeCouch) reply(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeCouch) fail(w http.ResponseWriter, status int, code, reason string) {
	f.reply(w, status, map[string]string{"error": code, "reason": reason})
}

func (f *fakeCouch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	switch parts[0] {
	case "":
		f.reply(w, http.StatusOK, map[string]interface{}{
			"couchdb": "Welcome",
			"version": "3.3.1",
			"vendor":  map[string]string{"name": "fake"},
		})
		return
	case "_up":
		return
	}
	if parts[0] != f.db {
		f.fail(w, http.StatusNotFound, "not_found", "Database does not exist.")
		return
	}
	if len(parts) == 1 || parts[1] == "" {
		f.serveDB(w, r)
		return
	}
	if !f.exists {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.fail(w, http.StatusNotFound, "not_found", "Database does not exist.")
		return
	}
	f.serveDoc(w, r, parts[1])
}

func (f *fakeCouch) serveDB(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		if f.exists {
			f.fail(w, http.StatusPreconditionFailed, "file_exists", "The database could not be created, the file already exists.")
			return
		}
		f.exists = true
		f.reply(w, http.StatusCreated, map[string]bool{"ok": true})
	case http.MethodDelete:
		if !f.exists {
			f.fail(w, http.StatusNotFound, "not_found", "Database does not exist.")
			return
		}
		f.exists = false
		f.docs = map[string]map[string]interface{}{}
		f.reply(w, http.StatusOK, map[string]bool{"ok": true})
	case http.MethodPost:
		if !f.exists {
			f.fail(w, http.StatusNotFound, "not_found", "Database does not exist.")
			return
		}
		var doc map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			f.fail(w, http.StatusBadRequest, "bad_request", "invalid UTF-8 JSON")
			return
		}
		f.write(w, doc)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeCouch) write(w http.ResponseWriter, doc map[string]interface{}) {
	id, _ := doc["_id"].(string)
	if id == "" {
		f.seq++
		id = fmt.Sprintf("generated-%d", f.seq)
	}
	rev, _ := doc["_rev"].(string)
	current, found := f.docs[id]
	gen := 1
	if found {
		if rev != current["_rev"] {
			f.fail(w, http.StatusConflict, "conflict", "Document update conflict.")
			return
		}
		fmt.Sscanf(rev, "%d-", &gen) // nolint: errcheck
		gen++
	} else if rev != "" {
		f.fail(w, http.StatusConflict, "conflict", "Document update conflict.")
		return
	}
	newRev := fmt.Sprintf("%d-fake", gen)
	doc["_id"] = id
	doc["_rev"] = newRev
	f.docs[id] = doc
	f.reply(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": id, "rev": newRev})
}

func (f *fakeCouch) serveDoc(w http.ResponseWriter, r *http.Request, id string) {
	doc, found := f.docs[id]
	switch r.Method {
	case http.MethodHead:
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"`+doc["_rev"].(string)+`"`)
	case http.MethodGet:
		if !found {
			f.fail(w, http.StatusNotFound, "not_found", "missing")
			return
		}
		f.reply(w, http.StatusOK, doc)
	case http.MethodDelete:
		if !found {
			f.fail(w, http.StatusNotFound, "not_found", "missing")
			return
		}
		if r.URL.Query().Get("rev") != doc["_rev"] {
			f.fail(w, http.StatusConflict, "conflict", "Document update conflict.")
			return
		}
		delete(f.docs, id)
		f.reply(w, http.StatusOK, map[string]interface{}{"ok": true, "id": id, "rev": "deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
