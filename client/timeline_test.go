package client

import (
	"fmt"
	"testing"
	"time"

	"chispa_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedMessage(id, senderID, content string, at time.Time) models.MessagePayload {
	return models.MessagePayload{
		Message: models.Message{
			ChatID:    "chat-1",
			MessageID: id,
			SenderID:  senderID,
			Content:   content,
			CreatedAt: at.UTC().Format(models.TimeLayout),
		},
	}
}

func TestOptimisticSendConfirmedByPush(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")

	localID := timeline.StageSend("hola", "", now)
	entries := timeline.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Pending)
	assert.Equal(t, localID, entries[0].MessageID)

	// The server's echo confirms the send: the placeholder is replaced by
	// the confirmed message, never shown alongside it.
	applied := timeline.ApplyPush(confirmedMessage("msg-1", "alice", "hola", now.Add(time.Second)))
	assert.True(t, applied)

	entries = timeline.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Pending)
	assert.Equal(t, "msg-1", entries[0].MessageID)
	assert.Equal(t, 0, timeline.PendingCount())
}

func TestOptimisticSendConfirmedByPageFetch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	timeline.StageSend("hola", "", now)

	// The push was lost during a network gap; the re-fetched page carries
	// the confirmation instead.
	timeline.MergePage([]models.MessagePayload{
		confirmedMessage("msg-1", "alice", "hola", now.Add(2*time.Second)),
	})
	assert.Equal(t, 0, timeline.PendingCount())
	require.Len(t, timeline.Entries(), 1)
}

func TestDuplicatePushIgnored(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	message := confirmedMessage("msg-1", "bob", "hey", now)

	assert.True(t, timeline.ApplyPush(message))
	assert.False(t, timeline.ApplyPush(message))
	assert.Len(t, timeline.Entries(), 1)
}

func TestPageAndPushOverlapWithoutDuplicates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")

	var page []models.MessagePayload
	for i := 0; i < 4; i++ {
		page = append(page, confirmedMessage(fmt.Sprintf("msg-%d", i), "bob", fmt.Sprintf("m%d", i), now.Add(time.Duration(i)*time.Minute)))
	}

	// Pushes land first, out of order, then the page re-delivers two of
	// them. Arrival order must not leak into the final view.
	timeline.ApplyPush(page[3])
	timeline.ApplyPush(page[1])
	timeline.MergePage(page)

	entries := timeline.Entries()
	require.Len(t, entries, 4)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), entry.MessageID)
	}
}

func TestConfirmationOutsideWindowKeepsPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	timeline.StageSend("hola", "", now)

	// Same content, but a minute away: that is a different send (say, the
	// user repeating themselves), not the confirmation.
	timeline.ApplyPush(confirmedMessage("msg-1", "alice", "hola", now.Add(time.Minute)))
	assert.Equal(t, 1, timeline.PendingCount())
	assert.Len(t, timeline.Entries(), 2)
}

func TestOtherSendersNeverConfirmPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	timeline.StageSend("hola", "", now)

	timeline.ApplyPush(confirmedMessage("msg-1", "bob", "hola", now))
	assert.Equal(t, 1, timeline.PendingCount())
}

func TestExpirePendingReportsFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	stale := timeline.StageSend("first", "", now)
	timeline.StageSend("second", "", now.Add(8*time.Second))

	failed := timeline.ExpirePending(now.Add(11 * time.Second))
	assert.Equal(t, []string{stale}, failed)
	assert.Equal(t, 1, timeline.PendingCount())

	// The surviving send can still be confirmed.
	timeline.ApplyPush(confirmedMessage("msg-1", "alice", "second", now.Add(9*time.Second)))
	assert.Equal(t, 0, timeline.PendingCount())
}

func TestPendingEntriesRenderAfterConfirmed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	timeline.MergePage([]models.MessagePayload{
		confirmedMessage("msg-1", "bob", "hey", now),
	})
	localID := timeline.StageSend("hola", "", now.Add(time.Second))

	entries := timeline.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "msg-1", entries[0].MessageID)
	assert.Equal(t, localID, entries[1].MessageID)
	assert.True(t, entries[1].Pending)
}

func TestSetLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("alice")
	timeline.SetLimits(2*time.Minute, time.Minute)
	timeline.StageSend("hola", "", now)

	// Within the widened window this now counts as the confirmation.
	timeline.ApplyPush(confirmedMessage("msg-1", "alice", "hola", now.Add(90*time.Second)))
	assert.Equal(t, 0, timeline.PendingCount())
}
