package service

import (
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"conrelay/internal/conversation"
	"conrelay/internal/domain"
	"conrelay/internal/registry"
)

// DeliveryService accepts messages, fans them out to every active connection
// of the recipient, and advances each message's delivery state.
type DeliveryService struct {
	registry  *registry.Registry
	store     *conversation.Store
	transport Transport
	log       *slog.Logger
}

func NewDeliveryService(reg *registry.Registry, store *conversation.Store, transport Transport, log *slog.Logger) *DeliveryService {
	return &DeliveryService{
		registry:  reg,
		store:     store,
		transport: transport,
		log:       log,
	}
}

// Send stores and delivers one message. Malformed input (blank recipient or
// text, unresolved sender) is dropped without an error, mirroring the
// permissive handling of client events. The sender's originating connection
// receives a message_sent acknowledgement either way the delivery goes:
// "delivered" when the recipient had at least one connection, "sent" when
// they were offline.
func (s *DeliveryService) Send(connID, sender, recipient, text, tempID string) {
	recipient = domain.NormalizeUsername(recipient)
	text = strings.TrimSpace(text)
	if sender == "" || recipient == "" || text == "" {
		return
	}

	msg := s.store.Append(sender, recipient, text)

	if conns := s.registry.ConnectionsOf(recipient); len(conns) > 0 {
		s.store.MarkDelivered(msg.ID)
		msg.Status = domain.StatusDelivered
		s.transport.SendTo(conns, NewMessageEvent{Type: EventNewMessage, Message: msg})
	}

	s.transport.SendTo([]string{connID}, MessageSentEvent{
		Type:      EventMessageSent,
		TempID:    tempID,
		MessageID: msg.ID,
		Status:    msg.Status,
	})

	s.log.Debug("message relayed",
		"id", msg.ID, "sender", sender, "recipient", recipient, "status", msg.Status)
}

// FetchHistory pushes the conversation log with counterpart to the
// requester's connection, then marks every message addressed to the
// requester in that conversation as read. Read receipts happen on this
// explicit pull only, never as a side effect of delivery.
func (s *DeliveryService) FetchHistory(connID, requester, counterpart string) {
	counterpart = domain.NormalizeUsername(counterpart)
	if requester == "" || counterpart == "" {
		return
	}

	history := s.store.History(requester, counterpart)
	s.store.MarkReadAll(requester, counterpart)

	s.transport.SendTo([]string{connID}, MessageHistoryEvent{
		Type:     EventMessageHistory,
		Contact:  counterpart,
		Messages: history,
	})
}

// DeliverPending is the login-time catch-up scan: every message addressed to
// username still in the sent state is pushed to the user's connections and
// marked delivered. Returns how many messages were caught up.
func (s *DeliveryService) DeliverPending(username string) int {
	pending := s.store.UndeliveredTo(username)
	if len(pending) == 0 {
		return 0
	}
	conns := s.registry.ConnectionsOf(username)
	if len(conns) == 0 {
		return 0
	}

	s.store.MarkDelivered(lo.Map(pending, func(m domain.Message, _ int) string {
		return m.ID
	})...)
	for i := range pending {
		pending[i].Status = domain.StatusDelivered
	}

	s.transport.SendTo(conns, UnreadMessagesEvent{
		Type:     EventUnreadMessages,
		Messages: pending,
	})

	s.log.Info("catch-up delivery", "user", username, "messages", len(pending))
	return len(pending)
}
