// Package conversation owns the per-pair message logs and the delivery state
// of every message. Logs are append-only and kept in memory for the lifetime
// of the process.
package conversation

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"conrelay/internal/domain"
)

const wireTimeLayout = "15:04:05"

// PairKey returns the order-independent key for a two-party conversation.
func PairKey(a, b string) string {
	a = domain.NormalizeUsername(a)
	b = domain.NormalizeUsername(b)
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// Store holds all conversations. One lock guards the logs, the status of
// every message, and the global id set.
type Store struct {
	mu   sync.Mutex
	logs map[string][]*domain.Message
	byID map[string]*domain.Message

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		logs:  make(map[string][]*domain.Message),
		byID:  make(map[string]*domain.Message),
		now:   time.Now,
		newID: func() string { return uuid.NewString()[:8] },
	}
}

// Append creates a message in the sent state and appends it to the pair's
// log. The id is unique across the whole store; generation retries on
// collision.
func (s *Store) Append(sender, recipient, text string) domain.Message {
	sender = domain.NormalizeUsername(sender)
	recipient = domain.NormalizeUsername(recipient)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for _, taken := s.byID[id]; taken; _, taken = s.byID[id] {
		id = s.newID()
	}

	now := s.now()
	msg := &domain.Message{
		ID:        id,
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		Timestamp: now.Format(wireTimeLayout),
		Status:    domain.StatusSent,
		CreatedAt: now,
	}

	key := PairKey(sender, recipient)
	s.logs[key] = append(s.logs[key], msg)
	s.byID[id] = msg
	return *msg
}

// History returns the log for the pair in insertion order. The returned
// messages are copies; retrieval never changes status.
func (s *Store) History(a, b string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[PairKey(a, b)]
	out := make([]domain.Message, len(log))
	for i, m := range log {
		out[i] = *m
	}
	return out
}

// MarkDelivered advances the given messages from sent to delivered. Messages
// already delivered or read are left alone.
func (s *Store) MarkDelivered(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if m, ok := s.byID[id]; ok && m.Status.Advances(domain.StatusDelivered) {
			m.Status = domain.StatusDelivered
		}
	}
}

// MarkReadAll marks every message addressed to owner in the conversation with
// counterpart as read and returns how many advanced. Messages sent by owner
// are untouched.
func (s *Store) MarkReadAll(owner, counterpart string) int {
	owner = domain.NormalizeUsername(owner)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.logs[PairKey(owner, counterpart)] {
		if m.Recipient == owner && m.Status.Advances(domain.StatusRead) {
			m.Status = domain.StatusRead
			n++
		}
	}
	return n
}

// UndeliveredTo returns copies of every message addressed to user that is
// still in the sent state, across all of the user's conversations, in
// creation order.
func (s *Store) UndeliveredTo(user string) []domain.Message {
	user = domain.NormalizeUsername(user)

	s.mu.Lock()
	var pending []domain.Message
	for _, log := range s.logs {
		for _, m := range log {
			if m.Recipient == user && m.Status == domain.StatusSent {
				pending = append(pending, *m)
			}
		}
	}
	s.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending
}
