package models

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyForIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKeyFor("alice", "bob"), PairKeyFor("bob", "alice"))
	assert.Equal(t, "alice#bob", PairKeyFor("bob", "alice"))
}

func TestNewMessageIDSortsInCreationOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{
		NewMessageID(base.Add(2 * time.Second)),
		NewMessageID(base),
		NewMessageID(base.Add(time.Second)),
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, sorted)
}

func TestTimeLayoutIsLexicographicallyOrdered(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 59, 59, 999999999, time.UTC).Format(TimeLayout)
	later := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Format(TimeLayout)
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))
}

func TestChatCounterpart(t *testing.T) {
	chat := Chat{ProfileA: "alice", ProfileB: "bob"}
	assert.Equal(t, "bob", chat.Counterpart("alice"))
	assert.Equal(t, "alice", chat.Counterpart("bob"))
	assert.True(t, chat.HasParticipant("alice"))
	assert.False(t, chat.HasParticipant("mallory"))
}
