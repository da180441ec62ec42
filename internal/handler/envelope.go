package handler

import (
	"encoding/json"
)

// Payload message that marks a frontend connectivity probe. Probes must
// never consume quota, so health checks cannot exhaust a client's day.
const connectionProbeMessage = "_connection_test"

// Inbound request envelope. The action picks the upstream route; only
// the inner payload is forwarded.
type Envelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Reports whether the payload is a connectivity probe.
func (e *Envelope) IsConnectionProbe() bool {
	if len(e.Payload) == 0 {
		return false
	}

	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Payload, &probe); err != nil {
		return false
	}

	return probe.Message == connectionProbeMessage
}

// ForwardBody returns the bytes to send upstream: the inner payload, or
// an empty object when the caller sent none.
func (e *Envelope) ForwardBody() []byte {
	if len(e.Payload) == 0 {
		return []byte("{}")
	}
	return e.Payload
}
