package couchdb

import (
	"crypto/sha256"
	"encoding/hex"
	"runtime"
)

// Document is implemented by every type stored through a Client.
type Document interface {
	// DeriveID returns an identifier computed from the document's content.
	// It is used only when DocID is empty, i.e. on first creation, and only
	// for documents that also implement IDSetter.
	DeriveID() string
	// DocID returns the stored identifier.
	DocID() string
	// DocRev returns the current revision, or "" if none is known.
	DocRev() string
	// SetDocRev records the revision of the document.
	SetDocRev(rev string)
}

// IDSetter is implemented by documents that can record a derived ID, so that
// the derived value is also what gets serialized as _id.
type IDSetter interface {
	SetDocID(id string)
}

// Doc carries the reserved CouchDB fields. Embed it in a struct to satisfy
// all of Document except DeriveID.
//
//	type Person struct {
//		couchdb.Doc
//		Name string `json:"name"`
//	}
//
//	func (p *Person) DeriveID() string { return couchdb.HashID(p.Name) }
type Doc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
}

// DocID returns d.ID.
func (d *Doc) DocID() string { return d.ID }

// DocRev returns d.Rev.
func (d *Doc) DocRev() string { return d.Rev }

// SetDocRev sets d.Rev.
func (d *Doc) SetDocRev(rev string) { d.Rev = rev }

// SetDocID sets d.ID.
func (d *Doc) SetDocID(id string) { d.ID = id }

// HashID returns the first 32 hex digits of the SHA-256 sum of s. It is a
// convenient DeriveID for documents keyed by a natural name.
func HashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}

// identify returns the id to address doc by. A document without an ID falls
// back to DeriveID, but only if it implements IDSetter: the derived ID is
// stored on the document so that it is also the _id that gets written.
func identify(doc Document) (string, error) {
	if doc == nil {
		return "", missingArg("document")
	}
	id, ok := storedID(doc)
	if !ok {
		return "", missingArg("non-nil document")
	}
	if id != "" {
		return id, nil
	}
	setter, ok := doc.(IDSetter)
	if !ok {
		return "", missingArg("docID")
	}
	if derived := doc.DeriveID(); derived != "" {
		setter.SetDocID(derived)
	}
	if id := doc.DocID(); id != "" {
		return id, nil
	}
	return "", missingArg("docID")
}

// storedID returns doc.DocID(). ok is false if doc is a typed nil pointer.
func storedID(doc Document) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isRuntime := r.(runtime.Error); !isRuntime {
				panic(r)
			}
			ok = false
		}
	}()
	return doc.DocID(), true
}
