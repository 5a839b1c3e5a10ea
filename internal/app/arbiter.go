package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/core"
	"github.com/corvan/Beam/internal/domain"
)

// Arbiter decides host registrations. A claim against a free slot or
// the sitting host's own id resolves immediately; a claim against a
// different live host is parked for one grace period and decided
// against the registry state at expiry. The grace period is sized so
// that a genuinely dead host's keepalive loss would have been detected
// by then.
type Arbiter struct {
	registry *Registry
	grace    time.Duration
}

func NewArbiter(registry *Registry, grace time.Duration) *Arbiter {
	return &Arbiter{registry: registry, grace: grace}
}

// RegisterHost handles a "become host" request.
func (a *Arbiter) RegisterHost(p domain.Profile, tr core.Conn) {
	res := a.registry.ClaimHost(p, tr)
	switch res.Outcome {
	case ClaimRegistered:
		a.reply(tr, core.RegisteredMessage{Type: core.EventRegistered})
	case ClaimReconnected:
		// Identity already proven by the id match; the transport swap
		// is the whole answer.
	case ClaimConflict:
		log.Info().Str("module", "app.arbiter").
			Str("claimant", p.ID).Str("host", res.Current.ID).
			Dur("grace", a.grace).Msg("host slot contested, deferring decision")
		time.AfterFunc(a.grace, func() {
			a.decide(p, tr)
		})
	}
}

// decide runs at grace expiry. The takeover check re-reads the
// registry under its lock; the host entry cached at claim time may be
// long gone.
func (a *Arbiter) decide(p domain.Profile, tr core.Conn) {
	accepted, current, _ := a.registry.CompleteTakeover(p, tr)
	if accepted {
		a.reply(tr, core.RegisteredMessage{Type: core.EventRegistered})
		return
	}
	a.reply(tr, core.HostRejectedMessage{
		Type:        core.EventHostRejected,
		Profile:     p,
		HostProfile: current,
	})
}

// RegisterViewer handles a "become viewer" request. A matching id is a
// reconnect: the transport is swapped with no grace period.
func (a *Arbiter) RegisterViewer(p domain.Profile, tr core.Conn) {
	a.registry.Upsert(p, tr)
	a.reply(tr, core.RegisteredMessage{Type: core.EventRegistered})
}

// reply pushes a message to the requester. The requester leaving before
// the reply lands is a normal race, not a fault.
func (a *Arbiter) reply(tr core.Conn, v any) {
	if err := tr.TrySend(core.Encode(v)); err != nil {
		log.Debug().Str("module", "app.arbiter").Err(err).Msg("reply dropped, requester gone")
	}
}
