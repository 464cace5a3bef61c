package analysis

import (
	"bytes"
	"encoding/json"
)

// Request is the analyze endpoint payload.
type Request struct {
	Transcript string `json:"transcript"`
}

// DecodeRequest parses a request body. An empty body counts as {}, and a body
// that is a JSON string is unwrapped once and parsed as the object it holds,
// which is how some gateways forward pre-serialized payloads.
func DecodeRequest(body []byte) (Request, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return Request{}, InvalidInput("Request body must be valid JSON.", err)
		}
		body = bytes.TrimSpace([]byte(inner))
		if len(body) == 0 {
			body = []byte("{}")
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Request{}, InvalidInput("Request body must be valid JSON.", err)
	}
	if fields == nil {
		return Request{}, invalidInput("Request body must be a JSON object.")
	}
	var req Request
	if raw, ok := fields["transcript"]; ok {
		transcript, isString := jsonString(raw)
		if !isString && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Request{}, invalidInput("Transcript must be a string.")
		}
		req.Transcript = transcript
	}
	return req, nil
}
