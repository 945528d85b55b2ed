package api

import (
	"errors"

	"github.com/tidwall/gjson"
)

// envelopeData returns the raw "data" member of a {status, message, data}
// envelope, or the whole body when it is not an envelope.
func envelopeData(body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode response: invalid json")
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return body, nil
	}
	data := res.Get("data")
	if !data.Exists() {
		return body, nil
	}
	if !res.Get("status").Exists() && !res.Get("message").Exists() {
		return body, nil
	}
	return []byte(data.Raw), nil
}
