package config

import "github.com/pion/webrtc/v4"

// ICEServers assembles the STUN/TURN list advertised to clients. A
// TURN entry without complete credentials is skipped rather than
// served half-configured.
func (c *Config) ICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, 2)
	if len(c.StunServers) > 0 {
		out = append(out, webrtc.ICEServer{URLs: c.StunServers})
	}
	t := c.TurnServer
	if t.URL != "" && t.Username != "" && t.Credential != "" {
		out = append(out, webrtc.ICEServer{
			URLs:       []string{t.URL},
			Username:   t.Username,
			Credential: t.Credential,
		})
	}
	return out
}
