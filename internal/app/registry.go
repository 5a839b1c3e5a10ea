package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/core"
	"github.com/corvan/Beam/internal/domain"
)

// Connection is one live registry entry: an endpoint's presented
// profile bound to its current transport. The registry owns the
// transport; whichever transport gets evicted by a replacement is
// closed here and nowhere else.
type Connection struct {
	Profile   domain.Profile
	Transport core.Conn
}

// Registry holds the live set of endpoint connections. Invariants,
// all enforced under one mutex:
//   - at most one entry has RoleHost
//   - viewer entries have unique profile ids
//   - no two entries share a transport
type Registry struct {
	mu    sync.Mutex
	conns []*Connection
}

func NewRegistry() *Registry {
	return &Registry{}
}

// FindHost returns a snapshot of the unique host entry, if any.
func (r *Registry) FindHost() (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.host(); c != nil {
		return *c, true
	}
	return Connection{}, false
}

// FindByID returns a snapshot of the entry whose profile id matches.
func (r *Registry) FindByID(id string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.byID(id); c != nil {
		return *c, true
	}
	return Connection{}, false
}

// HostProfile is a read-only view for the HTTP surface.
func (r *Registry) HostProfile() (domain.Profile, bool) {
	c, ok := r.FindHost()
	return c.Profile, ok
}

// Upsert installs a connection, matched by role for the single host
// slot and by profile id for viewers. An existing match is replaced in
// place: the old transport is closed and the new profile/transport
// installed as one step under the lock.
func (r *Registry) Upsert(p domain.Profile, tr core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsert(p, tr)
}

func (r *Registry) upsert(p domain.Profile, tr core.Conn) {
	var match *Connection
	if p.Role == domain.RoleHost {
		match = r.host()
	} else {
		// Viewers match viewers only; a viewer presenting the host's id
		// must not capture the host slot.
		match = r.viewerByID(p.ID)
	}
	if match == nil {
		r.conns = append(r.conns, &Connection{Profile: p, Transport: tr})
		log.Info().Str("module", "app.registry").Str("id", p.ID).Str("role", string(p.Role)).Msg("registered connection")
		return
	}
	r.replace(match, p, tr)
}

func (r *Registry) replace(match *Connection, p domain.Profile, tr core.Conn) {
	if match.Transport != nil && match.Transport.ID() != tr.ID() {
		match.Transport.Close()
	}
	match.Profile = p
	match.Transport = tr
	log.Info().Str("module", "app.registry").Str("id", p.ID).Str("role", string(p.Role)).Msg("replaced connection")
}

// RemoveByTransport drops the entry bound to the given transport id
// and returns its profile. No-op when nothing matches.
func (r *Registry) RemoveByTransport(transportID string) (domain.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.conns {
		if c.Transport != nil && c.Transport.ID() == transportID {
			p := c.Profile
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			log.Info().Str("module", "app.registry").Str("id", p.ID).Str("role", string(p.Role)).Msg("removed connection")
			return p, true
		}
	}
	return domain.Profile{}, false
}

// ClaimOutcome classifies a host registration against the current
// registry state.
type ClaimOutcome int

const (
	// ClaimRegistered: no host existed, the claimant now holds the slot.
	ClaimRegistered ClaimOutcome = iota
	// ClaimReconnected: same profile id as the sitting host; transport
	// swapped in place, old one closed.
	ClaimReconnected
	// ClaimConflict: a different host holds the slot. The registry is
	// untouched; arbitration decides later.
	ClaimConflict
)

type ClaimResult struct {
	Outcome ClaimOutcome
	// Current is the sitting host's profile on ClaimConflict.
	Current domain.Profile
}

// ClaimHost applies a host registration atomically: check-for-existing
// and the resulting mutation happen under one lock so a concurrent
// disconnect or second claim cannot interleave.
func (r *Registry) ClaimHost(p domain.Profile, tr core.Conn) ClaimResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.host()
	if cur == nil {
		r.conns = append(r.conns, &Connection{Profile: p, Transport: tr})
		log.Info().Str("module", "app.registry").Str("id", p.ID).Msg("host registered")
		return ClaimResult{Outcome: ClaimRegistered}
	}
	if cur.Profile.ID == p.ID {
		r.replace(cur, p, tr)
		return ClaimResult{Outcome: ClaimReconnected}
	}
	return ClaimResult{Outcome: ClaimConflict, Current: cur.Profile}
}

// CompleteTakeover decides a pending host replacement at grace expiry.
// It re-reads the live host entry rather than trusting anything cached
// at claim time: the sitting host may have disconnected (and been
// removed) during the wait, or a different host may sit there now.
// Denied when the sitting host's transport is still connected;
// accepted otherwise, closing any stale transport and installing the
// claimant.
func (r *Registry) CompleteTakeover(p domain.Profile, tr core.Conn) (accepted bool, current domain.Profile, hasCurrent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.host()
	if cur == nil {
		r.conns = append(r.conns, &Connection{Profile: p, Transport: tr})
		log.Info().Str("module", "app.registry").Str("id", p.ID).Msg("host takeover: slot free, claimant installed")
		return true, domain.Profile{}, false
	}
	if cur.Transport != nil && cur.Transport.Connected() {
		log.Info().Str("module", "app.registry").Str("id", p.ID).Str("host", cur.Profile.ID).Msg("host takeover denied, host still alive")
		return false, cur.Profile, true
	}
	stale := cur.Profile
	r.replace(cur, p, tr)
	log.Info().Str("module", "app.registry").Str("id", p.ID).Str("stale", stale.ID).Msg("host takeover accepted, stale host evicted")
	return true, stale, true
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Registry) host() *Connection {
	for _, c := range r.conns {
		if c.Profile.Role == domain.RoleHost {
			return c
		}
	}
	return nil
}

func (r *Registry) byID(id string) *Connection {
	for _, c := range r.conns {
		if c.Profile.ID == id {
			return c
		}
	}
	return nil
}

func (r *Registry) viewerByID(id string) *Connection {
	for _, c := range r.conns {
		if c.Profile.Role == domain.RoleViewer && c.Profile.ID == id {
			return c
		}
	}
	return nil
}
