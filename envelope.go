package couchdb

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// decodeResult interprets a response value. An object carrying both "error"
// and "reason" keys is returned as a *DatabaseError, and dest is left
// untouched. Anything else is unmarshaled into dest, unless dest is nil.
//
// A document that legitimately has both fields is indistinguishable from a
// server error; Options.RawEnvelope turns the check off.
func (c *Client) decodeResult(raw json.RawMessage, dest interface{}) error {
	if !c.rawEnvelope {
		if err := envelopeError(raw); err != nil {
			return err
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &Error{Kind: KindSerialization, Err: errors.Wrap(err, "decode result")}
	}
	return nil
}

// envelopeError returns a *DatabaseError if raw is an error envelope, a
// serialization error if it looks like one but its fields are not strings,
// and nil otherwise.
func envelopeError(raw json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// Not an object.
		return nil
	}
	rawCode, hasCode := obj["error"]
	rawReason, hasReason := obj["reason"]
	if !hasCode || !hasReason {
		return nil
	}
	code, err := envelopeString("error", rawCode)
	if err != nil {
		return err
	}
	reason, err := envelopeString("reason", rawReason)
	if err != nil {
		return err
	}
	return &Error{Kind: KindDatabase, Err: &DatabaseError{Code: code, Reason: reason}}
}

func envelopeString(field string, raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &Error{Kind: KindSerialization, Err: errors.Wrapf(err, "error envelope %q", field)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &Error{Kind: KindSerialization, Err: errors.Errorf("error envelope: %q is %T, not a string", field, v)}
	}
	return s, nil
}
