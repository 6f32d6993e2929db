/*
Package couchdb is a revision-aware client for a single CouchDB database.

Documents

Any type implementing Document can be stored. Embedding Doc provides the
reserved _id and _rev fields:

	type Person struct {
		couchdb.Doc
		Name   string   `json:"name"`
		Fields []string `json:"fields"`
	}

	func (p *Person) DeriveID() string { return couchdb.HashID(p.Name) }

Revisions

CouchDB rejects a write that does not name the revision it replaces. Update
and Delete send the revision the document already carries; a document with
no revision is first probed with a HEAD request, and the ETag of the reply
becomes its revision. That is the only extra request ever made: a stale
revision fails with a conflict, and a document that does not exist fails
with a KindProtocol error. Save is the variant that creates the document
instead in that last case.

Errors

Every error returned by a Client is an *Error, whose Kind tells transport
failures, server rejections, undecodable payloads, protocol violations and
bad arguments apart. Server rejections wrap a *DatabaseError:

	err := client.Update(ctx, person, nil)
	if couchdb.IsConflict(err) {
		// someone else wrote first
	}

A reply is treated as a server rejection when it is a JSON object with both
an "error" and a "reason" field. Documents that have both fields themselves
are therefore misreported; set Options.RawEnvelope for such databases.
*/
package couchdb
