package gateway

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var ErrEmptyBody = errors.New("empty response body")

// Body is a response exactly as the server sent it. The server wraps most
// payloads as {success, message, data} but answers some routes bare, so the
// accessors look through the envelope when one is present.
type Body []byte

func (b Body) root() gjson.Result {
	return gjson.ParseBytes(b)
}

// Payload returns data from an envelope, otherwise the whole body.
func (b Body) Payload() gjson.Result {
	r := b.root()
	if r.IsObject() {
		if data := r.Get("data"); data.Exists() && r.Get("success").Exists() {
			return data
		}
	}
	return r
}

// Items returns the elements of a list payload, or nil when the payload is
// not an array.
func (b Body) Items() []json.RawMessage {
	p := b.Payload()
	if !p.IsArray() {
		return nil
	}
	var items []json.RawMessage
	p.ForEach(func(_, v gjson.Result) bool {
		items = append(items, json.RawMessage(v.Raw))
		return true
	})
	return items
}

// Decode unmarshals the payload into v.
func (b Body) Decode(v any) error {
	p := b.Payload()
	if !p.Exists() {
		return ErrEmptyBody
	}
	return json.Unmarshal([]byte(p.Raw), v)
}

// Token finds an auth token at the top level or inside data.
func (b Body) Token() string {
	r := b.root()
	if t := r.Get("token"); t.Type == gjson.String {
		return t.String()
	}
	return r.Get("data.token").String()
}

// Message is the server's human-readable message, if any.
func (b Body) Message() string {
	r := b.root()
	if m := r.Get("message"); m.Type == gjson.String && m.String() != "" {
		return m.String()
	}
	return r.Get("error").String()
}

func (b Body) String() string { return string(b) }
