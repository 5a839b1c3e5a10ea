package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/core"
)

// Coordinator bundles the registry, arbiter and router for the
// transport adapters.
type Coordinator struct {
	Registry *Registry
	Arbiter  *Arbiter
	Router   *Router
}

func NewCoordinator(grace time.Duration) *Coordinator {
	reg := NewRegistry()
	return &Coordinator{
		Registry: reg,
		Arbiter:  NewArbiter(reg, grace),
		Router:   NewRouter(reg),
	}
}

// Disconnect handles a transport-level connection loss: the matching
// entry is removed unconditionally and the transport force-closed.
// Closing an already-closing transport is idempotent, and a transport
// that never registered simply has no entry to remove.
func (c *Coordinator) Disconnect(tr core.Conn) {
	if p, ok := c.Registry.RemoveByTransport(tr.ID()); ok {
		log.Info().Str("module", "app").Str("id", p.ID).Str("role", string(p.Role)).Msg("endpoint disconnected")
	}
	tr.Close()
}
