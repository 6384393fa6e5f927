package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sketchboard/internal/common"
)

// Envelope is one message on the event channel. RequestID is only set on
// request/response exchanges and is echoed back unchanged.
type Envelope struct {
	Type      Type            `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals v as the payload of an event of type t.
func NewEnvelope(t Type, v any) (Envelope, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", t, err)
	}
	return Envelope{Type: t, Payload: b}, nil
}

// Relay wraps an inbound payload for forwarding without re-encoding it.
func Relay(t Type, raw json.RawMessage) Envelope {
	return Envelope{Type: t, Payload: raw}
}

// Decode parses a full envelope from a frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrorBadPayload, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", common.ErrorBadPayload)
	}
	return env, nil
}

// Bind decodes the payload into v. An absent payload leaves v untouched.
func (e Envelope) Bind(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrorBadPayload, e.Type, err)
	}
	return nil
}
