// Package assistant talks to the language-model backend and turns its answers
// into conversation messages.
//
// The backend's response field is either free text, a JSON document encoded as
// text, or an already structured object. [Response] resolves that once at
// decode time; [Classify] decides whether the result is informational or a
// command proposal. Only commands in the fixed actionable set are proposed.
package assistant

import (
	"bytes"
	"encoding/json"
)

// ResponseType is the variant held by a Response.
type ResponseType int

const (
	// ResponseUnknown is a missing, null or non-text, non-object response.
	ResponseUnknown ResponseType = iota
	// ResponseText is a string, which may itself contain JSON.
	ResponseText
	// ResponseStructured is a JSON object.
	ResponseStructured
)

// Response is the tagged union of everything the backend may answer with.
type Response struct {
	Type   ResponseType
	Text   string
	Object json.RawMessage
}

// TextResponse wraps a string answer.
func TextResponse(s string) Response {
	return Response{Type: ResponseText, Text: s}
}

// StructuredResponse wraps an object answer.
func StructuredResponse(obj json.RawMessage) Response {
	return Response{Type: ResponseStructured, Object: obj}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Response{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TextResponse(s)
	case '{':
		*r = StructuredResponse(append(json.RawMessage(nil), data...))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResponseText:
		return json.Marshal(r.Text)
	case ResponseStructured:
		return r.Object, nil
	default:
		return []byte("null"), nil
	}
}
