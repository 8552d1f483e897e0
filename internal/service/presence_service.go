package service

import (
	"log/slog"

	"conrelay/internal/domain"
	"conrelay/internal/registry"
)

// PresenceService announces online/offline transitions and relays ephemeral
// typing signals. Presence goes to everyone; typing only to the recipient's
// connections. Neither is logged, retried, or acknowledged.
type PresenceService struct {
	registry  *registry.Registry
	transport Transport
	log       *slog.Logger
}

func NewPresenceService(reg *registry.Registry, transport Transport, log *slog.Logger) *PresenceService {
	return &PresenceService{
		registry:  reg,
		transport: transport,
		log:       log,
	}
}

// Announce broadcasts a presence transition to all connected users. Callers
// invoke it exactly once per transition: on a user's first bound connection
// and on their last unbind.
func (s *PresenceService) Announce(username string, online bool) {
	username = domain.NormalizeUsername(username)
	eventType := EventUserOffline
	if online {
		eventType = EventUserOnline
	}
	s.transport.Broadcast(PresenceEvent{Type: eventType, Username: username})
	s.log.Info("presence change", "user", username, "online", online)
}

// RelayTyping forwards a typing-start or typing-stop signal to all of the
// recipient's connections. A typing signal to an offline recipient vanishes.
func (s *PresenceService) RelayTyping(sender, recipient string, typing bool) {
	if sender == "" || recipient == "" {
		return
	}
	conns := s.registry.ConnectionsOf(recipient)
	if len(conns) == 0 {
		return
	}
	eventType := EventTypingStop
	if typing {
		eventType = EventTypingStart
	}
	s.transport.SendTo(conns, TypingEvent{Type: eventType, Sender: sender})
}
