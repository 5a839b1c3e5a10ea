package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/app"
	"github.com/corvan/Beam/internal/core"
	"github.com/corvan/Beam/internal/domain"
)

// handleFrame decodes one inbound envelope and routes it. Malformed or
// unknown frames are rejected per-message with a trace; nothing here
// takes the connection down.
func (ctl *Controller) handleFrame(c *wsConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", c.id).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case core.EventRegisterHost:
		ctl.handleRegister(c, env, domain.RoleHost)
	case core.EventRegisterViewer:
		ctl.handleRegister(c, env, domain.RoleViewer)
	case core.EventRequestConnection:
		ctl.Coord.Router.RequestConnection(c, env.Profile)
	case core.EventSessionOffer:
		ctl.Coord.Router.SessionOffer(env.Profile, env.SDP)
	case core.EventSessionAnswer:
		ctl.Coord.Router.SessionAnswer(env.Profile, env.Answer)
	case core.EventIceCandidate:
		target := app.ToHost()
		if env.ViewerProfile != nil {
			target = app.ToViewer(*env.ViewerProfile)
		}
		ctl.Coord.Router.IceCandidate(env.Profile, env.Candidate, target)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, "unknown_type")
	}
}

func (ctl *Controller) handleRegister(c *wsConn, env core.Envelope, role domain.Role) {
	p := env.Profile
	// The event name, not the payload, decides the claimed role.
	p.Role = role
	if err := p.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", c.id).Msg("bad profile")
		ctl.sendError(c, "bad_profile")
		return
	}

	log.Info().Str("module", "signal").Str("conn", c.id).Str("id", p.ID).Str("role", string(role)).Msg("register")
	if role == domain.RoleHost {
		ctl.Coord.Arbiter.RegisterHost(p, c)
		return
	}
	ctl.Coord.Arbiter.RegisterViewer(p, c)
}

func (ctl *Controller) sendError(c *wsConn, reason string) {
	_ = c.TrySend(core.Encode(core.ErrorMessage{Type: core.EventError, Error: reason}))
}
