package streaming

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EnvelopeType is the closed set of envelope kinds a stream may carry.
type EnvelopeType string

const (
	TypeText     EnvelopeType = "text"
	TypeComplete EnvelopeType = "complete"
	TypeError    EnvelopeType = "error"
	// TypeMermaid and TypeImage are only produced by the agent relay.
	TypeMermaid EnvelopeType = "mermaid"
	TypeImage   EnvelopeType = "image"
)

// CompleteMessage is the content of a normal terminal envelope.
const CompleteMessage = "Response complete"

// ErrTransportClosed reports that the consumer went away mid-stream.
var ErrTransportClosed = errors.New("stream transport closed")

// Envelope is one unit of streamed output.
type Envelope struct {
	ID      string       `json:"id"`
	Type    EnvelopeType `json:"type"`
	Content string       `json:"content"`
	Done    bool         `json:"done"`
}

// Valid reports whether t is a known envelope type.
func (t EnvelopeType) Valid() bool {
	switch t {
	case TypeText, TypeComplete, TypeError, TypeMermaid, TypeImage:
		return true
	}
	return false
}

// UnmarshalJSON rejects envelope types outside the closed set.
func (t *EnvelopeType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := EnvelopeType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown envelope type %q", s)
	}
	*t = v
	return nil
}

func textEnvelope(id, content string) Envelope {
	return Envelope{ID: id, Type: TypeText, Content: content}
}

func completeEnvelope(id string) Envelope {
	return Envelope{ID: id, Type: TypeComplete, Content: CompleteMessage, Done: true}
}

func errorEnvelope(id, msg string) Envelope {
	return Envelope{ID: id, Type: TypeError, Content: msg, Done: true}
}
