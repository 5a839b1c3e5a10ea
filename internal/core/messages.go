package core

import (
	"encoding/json"

	"github.com/corvan/Beam/internal/domain"
)

// Event names on the signaling wire. Inbound and outbound frames are
// JSON envelopes carrying one of these in their "type" field.
const (
	EventRegisterHost        = "register-host"
	EventRegisterViewer      = "register-viewer"
	EventRegistered          = "registered"
	EventHostRejected        = "host-rejected"
	EventRequestConnection   = "request-connection"
	EventNoHost              = "no-host"
	EventNotifyNewConnection = "notify-new-connection"
	EventSessionOffer        = "session-offer"
	EventSessionAnswer       = "session-answer"
	EventIceCandidate        = "ice-candidate"
	EventError               = "error"
)

// Envelope is the inbound superset frame. SDP, Answer and Candidate
// stay raw so relayed negotiation payloads pass through untouched.
type Envelope struct {
	Type          string          `json:"type"`
	Profile       domain.Profile  `json:"profile"`
	SDP           json.RawMessage `json:"sdp,omitempty"`
	Answer        json.RawMessage `json:"answer,omitempty"`
	Candidate     json.RawMessage `json:"candidate,omitempty"`
	ViewerProfile *domain.Profile `json:"viewerProfile,omitempty"`
}

type RegisteredMessage struct {
	Type string `json:"type"`
}

type HostRejectedMessage struct {
	Type        string         `json:"type"`
	Profile     domain.Profile `json:"profile"`
	HostProfile domain.Profile `json:"hostProfile"`
}

type NoHostMessage struct {
	Type    string         `json:"type"`
	Profile domain.Profile `json:"profile"`
}

type NotifyNewConnectionMessage struct {
	Type    string         `json:"type"`
	Profile domain.Profile `json:"profile"`
}

type SessionOfferMessage struct {
	Type    string          `json:"type"`
	Profile domain.Profile  `json:"profile"`
	SDP     json.RawMessage `json:"sdp"`
}

type SessionAnswerMessage struct {
	Type    string          `json:"type"`
	Answer  json.RawMessage `json:"answer"`
	Profile domain.Profile  `json:"profile"`
}

type IceCandidateMessage struct {
	Type      string          `json:"type"`
	Profile   domain.Profile  `json:"profile"`
	Candidate json.RawMessage `json:"candidate"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Encode marshals an outbound message into a Frame. Marshal failures
// cannot happen for the message types above, so the error is folded
// into a nil frame the conn layer drops.
func Encode(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return Frame(b)
}
