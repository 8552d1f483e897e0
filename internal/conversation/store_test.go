package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conrelay/internal/domain"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice:bob", PairKey("Bob", " Alice "))
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	s := NewStore()

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		msg := s.Append("alice", "bob", fmt.Sprintf("message %d", i))
		_, dup := seen[msg.ID]
		require.False(t, dup, "duplicate id %s", msg.ID)
		seen[msg.ID] = struct{}{}
		assert.Equal(t, domain.StatusSent, msg.Status)
	}
}

func TestAppendRetriesOnIDCollision(t *testing.T) {
	s := NewStore()
	ids := []string{"same", "same", "other"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := s.Append("alice", "bob", "one")
	second := s.Append("alice", "bob", "two")

	assert.Equal(t, "same", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestHistoryIsAppendOrderedAndSymmetric(t *testing.T) {
	s := NewStore()
	s.Append("alice", "bob", "one")
	s.Append("bob", "alice", "two")
	s.Append("alice", "bob", "three")
	s.Append("alice", "carol", "unrelated")

	ab := s.History("alice", "bob")
	ba := s.History("bob", "alice")

	require.Len(t, ab, 3)
	assert.Equal(t, ab, ba)
	assert.Equal(t, []string{"one", "two", "three"}, texts(ab))
}

func TestHistoryDoesNotMutateStatus(t *testing.T) {
	s := NewStore()
	s.Append("alice", "bob", "hi")

	s.History("bob", "alice")

	assert.Equal(t, domain.StatusSent, s.History("alice", "bob")[0].Status)
}

func TestStatusAdvancesForwardOnly(t *testing.T) {
	s := NewStore()
	msg := s.Append("alice", "bob", "hi")

	s.MarkDelivered(msg.ID)
	assert.Equal(t, domain.StatusDelivered, s.History("alice", "bob")[0].Status)

	n := s.MarkReadAll("bob", "alice")
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.StatusRead, s.History("alice", "bob")[0].Status)

	// A late delivery attempt must not regress a read message.
	s.MarkDelivered(msg.ID)
	assert.Equal(t, domain.StatusRead, s.History("alice", "bob")[0].Status)

	// Marking again advances nothing.
	assert.Zero(t, s.MarkReadAll("bob", "alice"))
}

func TestMarkReadAllLeavesOwnMessagesUntouched(t *testing.T) {
	s := NewStore()
	s.Append("alice", "bob", "from alice")
	s.Append("bob", "alice", "from bob")

	n := s.MarkReadAll("bob", "alice")

	require.Equal(t, 1, n)
	history := s.History("alice", "bob")
	assert.Equal(t, domain.StatusRead, history[0].Status)
	assert.Equal(t, domain.StatusSent, history[1].Status, "bob's own message must stay sent")
}

func TestUndeliveredTo(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s.Append("alice", "carol", "first")
	s.Append("bob", "carol", "second")
	delivered := s.Append("alice", "carol", "third")
	s.Append("carol", "alice", "not addressed to carol")
	s.MarkDelivered(delivered.ID)

	pending := s.UndeliveredTo("carol")

	require.Len(t, pending, 2)
	assert.Equal(t, []string{"first", "second"}, texts(pending))
}

func texts(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}
