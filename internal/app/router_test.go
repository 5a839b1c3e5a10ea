package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/corvan/Beam/internal/core"
)

// Scenario: viewer asks to connect while no host is present.
func TestRequestConnectionNoHost(t *testing.T) {
	c := newTestCoordinator()
	viewerTr := newFakeConn("t1")

	c.Router.RequestConnection(viewerTr, viewerProfile("v1", "Viewer"))

	if countEvents(viewerTr, core.EventNoHost) != 1 {
		t.Fatalf("expected exactly one no-host reply, got %v", viewerTr.events())
	}
	var msg core.NoHostMessage
	if err := json.Unmarshal(viewerTr.lastFrame(), &msg); err != nil {
		t.Fatalf("decode no-host: %v", err)
	}
	if msg.Profile.ID != "v1" {
		t.Fatalf("no-host carries %q, want the requester's profile", msg.Profile.ID)
	}
	if c.Registry.Len() != 0 {
		t.Fatalf("request-connection mutated the registry")
	}
}

// Scenario: viewer asks to connect while a host is registered.
func TestRequestConnectionNotifiesHost(t *testing.T) {
	c := newTestCoordinator()
	hostTr := newFakeConn("t1")
	c.Arbiter.RegisterHost(hostProfile("h1", "Host"), hostTr)

	viewerTr := newFakeConn("t2")
	c.Router.RequestConnection(viewerTr, viewerProfile("v1", "Viewer"))

	if countEvents(hostTr, core.EventNotifyNewConnection) != 1 {
		t.Fatalf("host events: %v", hostTr.events())
	}
	var msg core.NotifyNewConnectionMessage
	if err := json.Unmarshal(hostTr.lastFrame(), &msg); err != nil {
		t.Fatalf("decode notify-new-connection: %v", err)
	}
	if msg.Profile.ID != "v1" {
		t.Fatalf("host notified about %q, want v1", msg.Profile.ID)
	}
	if hasEvent(viewerTr, core.EventNoHost) {
		t.Fatalf("requester got no-host although a host exists")
	}
}

// Scenario: host's offer reaches the addressed viewer unchanged.
func TestSessionOfferRelayedToViewer(t *testing.T) {
	c := newTestCoordinator()
	viewerTr := newFakeConn("t1")
	c.Arbiter.RegisterViewer(viewerProfile("v1", "Viewer"), viewerTr)

	sdp := json.RawMessage(`{"type":"offer","sdp":"v=0..."}`)
	c.Router.SessionOffer(viewerProfile("v1", "Viewer"), sdp)

	if countEvents(viewerTr, core.EventSessionOffer) != 1 {
		t.Fatalf("viewer events: %v", viewerTr.events())
	}
	var msg core.SessionOfferMessage
	if err := json.Unmarshal(viewerTr.lastFrame(), &msg); err != nil {
		t.Fatalf("decode session-offer: %v", err)
	}
	if !bytes.Equal(msg.SDP, sdp) {
		t.Fatalf("sdp altered in transit: %s", msg.SDP)
	}
}

func TestSessionOfferDroppedForUnknownViewer(t *testing.T) {
	c := newTestCoordinator()
	hostTr := newFakeConn("t1")
	c.Arbiter.RegisterHost(hostProfile("h1", "Host"), hostTr)

	c.Router.SessionOffer(viewerProfile("v1", "Viewer"), json.RawMessage(`{}`))

	// Only the registration ack may exist; the offer goes nowhere.
	if countEvents(hostTr, core.EventSessionOffer) != 0 {
		t.Fatalf("offer bounced back to host: %v", hostTr.events())
	}
	if c.Registry.Len() != 1 {
		t.Fatalf("registry changed by dropped relay")
	}
}

func TestSessionAnswerRelayedToHost(t *testing.T) {
	c := newTestCoordinator()
	hostTr := newFakeConn("t1")
	c.Arbiter.RegisterHost(hostProfile("h1", "Host"), hostTr)

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0..."}`)
	c.Router.SessionAnswer(viewerProfile("v1", "Viewer"), answer)

	if countEvents(hostTr, core.EventSessionAnswer) != 1 {
		t.Fatalf("host events: %v", hostTr.events())
	}
	var msg core.SessionAnswerMessage
	if err := json.Unmarshal(hostTr.lastFrame(), &msg); err != nil {
		t.Fatalf("decode session-answer: %v", err)
	}
	if !bytes.Equal(msg.Answer, answer) || msg.Profile.ID != "v1" {
		t.Fatalf("session-answer payload: answer=%s profile=%q", msg.Answer, msg.Profile.ID)
	}
}

func TestIceCandidateToHostByDefault(t *testing.T) {
	c := newTestCoordinator()
	hostTr := newFakeConn("t1")
	c.Arbiter.RegisterHost(hostProfile("h1", "Host"), hostTr)

	cand := json.RawMessage(`{"candidate":"candidate:0 1 UDP ..."}`)
	c.Router.IceCandidate(viewerProfile("v1", "Viewer"), cand, ToHost())

	if countEvents(hostTr, core.EventIceCandidate) != 1 {
		t.Fatalf("host events: %v", hostTr.events())
	}
	var msg core.IceCandidateMessage
	if err := json.Unmarshal(hostTr.lastFrame(), &msg); err != nil {
		t.Fatalf("decode ice-candidate: %v", err)
	}
	if !bytes.Equal(msg.Candidate, cand) {
		t.Fatalf("candidate altered in transit: %s", msg.Candidate)
	}
}

func TestIceCandidateToNamedViewer(t *testing.T) {
	c := newTestCoordinator()
	hostTr := newFakeConn("t1")
	c.Arbiter.RegisterHost(hostProfile("h1", "Host"), hostTr)
	viewerTr := newFakeConn("t2")
	c.Arbiter.RegisterViewer(viewerProfile("v1", "Viewer"), viewerTr)

	c.Router.IceCandidate(hostProfile("h1", "Host"), json.RawMessage(`{}`), ToViewer(viewerProfile("v1", "Viewer")))

	if countEvents(viewerTr, core.EventIceCandidate) != 1 {
		t.Fatalf("viewer events: %v", viewerTr.events())
	}
	if countEvents(hostTr, core.EventIceCandidate) != 0 {
		t.Fatalf("candidate leaked to host: %v", hostTr.events())
	}
}

// Dangling target: no outbound message, no registry change.
func TestIceCandidateDanglingTarget(t *testing.T) {
	c := newTestCoordinator()
	viewerTr := newFakeConn("t1")
	c.Arbiter.RegisterViewer(viewerProfile("v1", "Viewer"), viewerTr)
	before := c.Registry.Len()

	c.Router.IceCandidate(viewerProfile("v1", "Viewer"), json.RawMessage(`{}`), ToHost())
	c.Router.IceCandidate(hostProfile("h1", "Host"), json.RawMessage(`{}`), ToViewer(viewerProfile("v9", "Gone")))

	if countEvents(viewerTr, core.EventIceCandidate) != 0 {
		t.Fatalf("viewer received a candidate addressed elsewhere: %v", viewerTr.events())
	}
	if c.Registry.Len() != before {
		t.Fatalf("registry changed by dropped candidates")
	}
}
