package service

import "conrelay/internal/domain"

// Wire event types pushed to clients. Every outbound frame carries a "type"
// discriminator; inbound frames use the same convention and are decoded by
// the ws handler.
const (
	EventAuthSuccess    = "auth_success"
	EventAuthError      = "auth_error"
	EventRegSuccess     = "reg_success"
	EventRegError       = "reg_error"
	EventOnlineUsers    = "online_users"
	EventUserOnline     = "user_online"
	EventUserOffline    = "user_offline"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventMessageHistory = "message_history"
	EventUnreadMessages = "unread_messages"
)

type AuthSuccessEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// NoticeEvent carries a user-facing message for auth_error, reg_success and
// reg_error.
type NoticeEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type OnlineUsersEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type PresenceEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

type TypingEvent struct {
	Type   string `json:"type"`
	Sender string `json:"sender"`
}

type NewMessageEvent struct {
	Type string `json:"type"`
	domain.Message
}

type MessageSentEvent struct {
	Type      string               `json:"type"`
	TempID    string               `json:"temp_id"`
	MessageID string               `json:"message_id"`
	Status    domain.MessageStatus `json:"status"`
}

type MessageHistoryEvent struct {
	Type     string           `json:"type"`
	Contact  string           `json:"contact"`
	Messages []domain.Message `json:"messages"`
}

type UnreadMessagesEvent struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages"`
}
