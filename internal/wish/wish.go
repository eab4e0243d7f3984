// Package wish defines the guestbook data model and the shape check applied
// to payloads received from the wishes endpoint.
package wish

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Wish is a guest-submitted name and message. Both fields are untrusted text.
type Wish struct {
	Name    string `json:"name"    yaml:"name"`
	Message string `json:"message" yaml:"message"`
}

// List is an ordered list of wishes, newest first once received.
type List []Wish

// Reversed returns a copy of l in reverse order.
func (l List) Reversed() List {
	out := slices.Clone(l)
	slices.Reverse(out)
	return out
}

// Payload is the result object the endpoint hands to its callback:
// {"success": true, "data": [{"name": "...", "message": "..."}]}.
type Payload struct {
	Success json.RawMessage   `json:"success"`
	Data    []json.RawMessage `json:"-"`

	dataIsArray bool
}

// ErrMalformed reports a payload that does not match the expected shape.
var ErrMalformed = errors.New("malformed wishes payload")

// ParsePayload decodes raw as a result object. It fails only when raw is not
// a JSON object; shape problems are reported by Valid.
func ParsePayload(raw []byte) (*Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: null result", ErrMalformed)
	}

	p := &Payload{Success: fields["success"]}
	if data, ok := fields["data"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err == nil && items != nil {
			p.Data = items
			p.dataIsArray = true
		}
	}
	return p, nil
}

// Valid reports whether the payload has a truthy success flag and an array of data.
func (p *Payload) Valid() bool {
	return p != nil && truthy(p.Success) && p.dataIsArray
}

// Wishes converts the data array to a List in received order. Items that are
// not objects become empty wishes; non-string fields are rendered as text.
func (p *Payload) Wishes() List {
	out := make(List, 0, len(p.Data))
	for _, item := range p.Data {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(item, &fields)
		out = append(out, Wish{
			Name:    text(fields["name"]),
			Message: text(fields["message"]),
		})
	}
	return out
}

// Decode parses raw and returns the wishes newest first. It returns
// ErrMalformed when the payload fails the shape check.
func Decode(raw []byte) (List, error) {
	p, err := ParsePayload(raw)
	if err != nil {
		return nil, err
	}
	if !p.Valid() {
		return nil, ErrMalformed
	}
	return p.Wishes().Reversed(), nil
}

// truthy applies JavaScript truthiness to a JSON value.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// text renders a JSON value as display text. Strings are unquoted, null and
// missing values are empty, anything else keeps its JSON form.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
