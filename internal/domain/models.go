package domain

import (
	"strings"
	"time"
)

// User represents an application user as stored in the credential store.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// MessageStatus tracks delivery progress of a message. Statuses only move
// forward: sent -> delivered -> read.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// Advances reports whether moving from s to next is a forward transition.
func (s MessageStatus) Advances(next MessageStatus) bool {
	return statusRank[next] > statusRank[s]
}

// Message is a single chat message between two users. Immutable except for
// its status, which is owned by the conversation store.
type Message struct {
	ID        string        `json:"id"`
	Sender    string        `json:"sender"`
	Recipient string        `json:"recipient"`
	Text      string        `json:"text"`
	Timestamp string        `json:"timestamp"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"-"`
}

// NormalizeUsername lowercases and trims a user handle. Handles are
// case-insensitive everywhere in the relay.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
