package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindFirstConnection(t *testing.T) {
	r := New()

	assert.True(t, r.Bind("alice", "c1"), "first connection should report the online transition")
	assert.False(t, r.Bind("alice", "c2"), "second device is not a transition")
	assert.False(t, r.Bind("alice", "c1"), "rebinding the same connection is a no-op")

	assert.ElementsMatch(t, []string{"c1", "c2"}, r.ConnectionsOf("alice"))
}

func TestBindNormalizesUsername(t *testing.T) {
	r := New()

	r.Bind("  Alice ", "c1")

	assert.True(t, r.IsOnline("alice"))
	assert.ElementsMatch(t, []string{"c1"}, r.ConnectionsOf("ALICE"))

	owner, ok := r.UserOf("c1")
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)
}

func TestBindMovesConnectionBetweenUsers(t *testing.T) {
	r := New()

	r.Bind("alice", "c1")
	first := r.Bind("bob", "c1")

	assert.True(t, first)
	assert.False(t, r.IsOnline("alice"), "alice lost her only connection")
	assert.ElementsMatch(t, []string{"c1"}, r.ConnectionsOf("bob"))
}

func TestUnbind(t *testing.T) {
	r := New()
	r.Bind("alice", "c1")
	r.Bind("alice", "c2")

	username, last, ok := r.Unbind("c1")
	assert.True(t, ok)
	assert.False(t, last, "a non-last connection must not report offline")
	assert.Equal(t, "alice", username)

	username, last, ok = r.Unbind("c2")
	assert.True(t, ok)
	assert.True(t, last, "last connection reports the offline transition")
	assert.Equal(t, "alice", username)

	_, _, ok = r.Unbind("c2")
	assert.False(t, ok, "unbinding an unknown connection is not ok")
	assert.Empty(t, r.ConnectionsOf("alice"))
}

func TestListOnline(t *testing.T) {
	r := New()
	r.Bind("carol", "c3")
	r.Bind("alice", "c1")
	r.Bind("bob", "c2")
	r.Bind("bob", "c4")

	assert.Equal(t, []string{"alice", "carol"}, r.ListOnline("bob"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, r.ListOnline(""))
}

func TestConcurrentBindUnbind(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			r.Bind("alice", connID)
			r.ConnectionsOf("alice")
			r.Unbind(connID)
		}(i)
	}
	wg.Wait()

	assert.False(t, r.IsOnline("alice"))
	assert.Empty(t, r.ListOnline(""))
}
