package couchdb

// Version is the current version of this package.
const Version = "0.3.0"

// etagHeader is the response header carrying a document's current revision,
// as returned by Head (lower-cased).
const etagHeader = "etag"
