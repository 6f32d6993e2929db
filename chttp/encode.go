// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package chttp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	prefixDesign = "_design/"
	prefixLocal  = "_local/"
)

// EncodeDocID encodes a document ID according to CouchDB's path encoding rules.
//
// In particular:
// -  '_design/' and '_local/' prefixes are unaltered.
// - The rest of the docID is escaped as a single path segment, so that a
//   slash within the ID does not split the path.
func EncodeDocID(docID string) string {
	for _, prefix := range []string{prefixDesign, prefixLocal} {
		if strings.HasPrefix(docID, prefix) {
			return prefix + url.PathEscape(strings.TrimPrefix(docID, prefix))
		}
	}
	return url.PathEscape(docID)
}

// EncodeBody JSON encodes i. A string, []byte, or json.RawMessage is assumed
// to be JSON already, and is passed through as-is.
func EncodeBody(i interface{}) ([]byte, error) {
	switch t := i.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case json.RawMessage:
		return t, nil
	}
	body, err := json.Marshal(i)
	return body, errors.Wrap(err, "encode request body")
}

// BodyEncoder returns a function which returns the JSON-encoded version of i
// as an io.ReadCloser, suitable for use as Options.GetBody.
func BodyEncoder(i interface{}) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		body, err := EncodeBody(i)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(body)), nil
	}
}
