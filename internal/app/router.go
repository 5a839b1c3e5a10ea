package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/core"
	"github.com/corvan/Beam/internal/domain"
)

// IceTarget names the recipient of an ice-candidate relay. The two
// branches are explicit so routing stays exhaustive: candidates either
// go to the host or to one specific viewer.
type IceTarget struct {
	Viewer *domain.Profile
}

func ToHost() IceTarget                   { return IceTarget{} }
func ToViewer(p domain.Profile) IceTarget { return IceTarget{Viewer: &p} }

// Router relays negotiation messages between registered endpoints. It
// keeps no state of its own; every decision reads the registry as of
// the moment the message arrives. A resolved target that is no longer
// registered means the endpoint left already, which is an ordinary
// race: the message is dropped with a trace, never an error.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// RequestConnection handles a viewer asking to be connected. With no
// host present the viewer is told so; otherwise the host is notified
// of the new connection.
func (rt *Router) RequestConnection(requester core.Conn, p domain.Profile) {
	host, ok := rt.registry.FindHost()
	if !ok {
		rt.deliver(requester, core.NoHostMessage{Type: core.EventNoHost, Profile: p}, "no-host reply")
		return
	}
	rt.deliver(host.Transport, core.NotifyNewConnectionMessage{Type: core.EventNotifyNewConnection, Profile: p}, "notify-new-connection")
}

// SessionOffer relays a host's offer to the viewer named by the
// profile in the payload.
func (rt *Router) SessionOffer(p domain.Profile, sdp json.RawMessage) {
	viewer, ok := rt.registry.FindByID(p.ID)
	if !ok {
		log.Debug().Str("module", "app.router").Str("viewer", p.ID).Msg("session-offer dropped, viewer gone")
		return
	}
	rt.deliver(viewer.Transport, core.SessionOfferMessage{Type: core.EventSessionOffer, Profile: p, SDP: sdp}, "session-offer")
}

// SessionAnswer relays a viewer's answer to the host.
func (rt *Router) SessionAnswer(p domain.Profile, answer json.RawMessage) {
	host, ok := rt.registry.FindHost()
	if !ok {
		log.Debug().Str("module", "app.router").Str("viewer", p.ID).Msg("session-answer dropped, no host")
		return
	}
	rt.deliver(host.Transport, core.SessionAnswerMessage{Type: core.EventSessionAnswer, Answer: answer, Profile: p}, "session-answer")
}

// IceCandidate relays a connectivity candidate to the named target.
func (rt *Router) IceCandidate(p domain.Profile, candidate json.RawMessage, target IceTarget) {
	var to Connection
	var ok bool
	if target.Viewer != nil {
		to, ok = rt.registry.FindByID(target.Viewer.ID)
	} else {
		to, ok = rt.registry.FindHost()
	}
	if !ok {
		log.Debug().Str("module", "app.router").Str("from", p.ID).Msg("ice-candidate dropped, target gone")
		return
	}
	rt.deliver(to.Transport, core.IceCandidateMessage{Type: core.EventIceCandidate, Profile: p, Candidate: candidate}, "ice-candidate")
}

func (rt *Router) deliver(tr core.Conn, v any, what string) {
	if err := tr.TrySend(core.Encode(v)); err != nil {
		log.Debug().Str("module", "app.router").Err(err).Str("message", what).Msg("delivery dropped")
	}
}
