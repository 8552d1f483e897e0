package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conrelay/internal/registry"
)

func TestAnnounceBroadcastsToEveryone(t *testing.T) {
	reg := registry.New()
	transport := &fakeTransport{}
	svc := NewPresenceService(reg, transport, testLogger())

	svc.Announce("Alice", true)
	svc.Announce("alice", false)

	require.Len(t, transport.bcasts, 2)
	online := transport.bcasts[0].(PresenceEvent)
	assert.Equal(t, EventUserOnline, online.Type)
	assert.Equal(t, "alice", online.Username)
	offline := transport.bcasts[1].(PresenceEvent)
	assert.Equal(t, EventUserOffline, offline.Type)
}

func TestRelayTypingTargetsRecipientConnections(t *testing.T) {
	reg := registry.New()
	transport := &fakeTransport{}
	svc := NewPresenceService(reg, transport, testLogger())
	reg.Bind("bob", "b1")
	reg.Bind("bob", "b2")

	svc.RelayTyping("alice", "bob", true)
	svc.RelayTyping("alice", "bob", false)

	for _, connID := range []string{"b1", "b2"} {
		events := transport.eventsFor(connID)
		require.Len(t, events, 2, "connection %s", connID)
		start := events[0].(TypingEvent)
		assert.Equal(t, EventTypingStart, start.Type)
		assert.Equal(t, "alice", start.Sender)
		stop := events[1].(TypingEvent)
		assert.Equal(t, EventTypingStop, stop.Type)
	}
	assert.Empty(t, transport.bcasts, "typing is never broadcast")
}

func TestRelayTypingToOfflineRecipientIsDropped(t *testing.T) {
	reg := registry.New()
	transport := &fakeTransport{}
	svc := NewPresenceService(reg, transport, testLogger())

	svc.RelayTyping("alice", "carol", true)
	svc.RelayTyping("", "bob", true)

	assert.Empty(t, transport.sent)
}
