package handler

import (
	"encoding/json"
	"strings"
)

type BodyShape int

const (
	ShapeJSON BodyShape = iota
	ShapePlainText
)

// Upstream body after content negotiation. JSON passes through
// byte-for-byte; plain text is wrapped once, at this boundary, into the
// response-shaped object downstream consumers expect.
type ShapedBody struct {
	shape BodyShape
	json  []byte
	text  string
}

// Negotiate classifies an upstream body. A declared JSON content type
// wins; otherwise a body that parses as JSON is passed through, and
// anything else is treated as plain text.
func Negotiate(body []byte, contentType string) ShapedBody {
	if strings.Contains(contentType, "application/json") {
		return ShapedBody{shape: ShapeJSON, json: body}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return ShapedBody{shape: ShapeJSON, json: body}
	}

	return ShapedBody{shape: ShapePlainText, text: string(body)}
}

func (b ShapedBody) Shape() BodyShape {
	return b.shape
}

func (b ShapedBody) ContentType() string {
	return "application/json"
}

// Bytes returns the caller-facing body. Plain text becomes
// {"response": text, "reply": text} so every consumer receives a
// response-shaped object.
func (b ShapedBody) Bytes() []byte {
	if b.shape == ShapeJSON {
		return b.json
	}

	wrapped, _ := json.Marshal(map[string]string{
		"response": b.text,
		"reply":    b.text,
	})
	return wrapped
}
