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
	"io"

	"github.com/pkg/errors"
)

// Options are optional parameters which may be sent with a request.
type Options struct {
	// Accept sets the request's Accept header. Defaults to "application/json".
	// To specify any, use "*/*".
	Accept string

	// ContentType sets the requests's Content-Type header. Defaults to
	// "application/json". It is only sent when the request has a body.
	ContentType string

	// GetBody is a function to set the body, and can be used on retries and
	// redirects.
	GetBody func() (io.ReadCloser, error)

	// JSON is an arbitrary data type which is marshaled to the request's body.
	// It an error to set both GetBody and JSON on the same request.
	JSON interface{}
}

func (o *Options) getBody() (func() (io.ReadCloser, error), error) {
	if o == nil {
		return nil, nil
	}
	if o.JSON != nil {
		if o.GetBody != nil {
			return nil, errors.New("both JSON and GetBody set")
		}
		body, err := EncodeBody(o.JSON)
		if err != nil {
			return nil, err
		}
		return func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}, nil
	}
	return o.GetBody, nil
}
