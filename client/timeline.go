// Package client holds the device-side view of a chat: the merge of
// REST-fetched history pages and realtime pushes, plus the optimistic
// placeholder shown for a send that the server has not confirmed yet.
package client

import (
	"sort"
	"sync"
	"time"

	"chispa_server/models"

	"github.com/google/uuid"
)

const (
	// defaultConfirmWindow is how far a confirmed message's server timestamp
	// may sit from the local staging time and still count as the
	// confirmation of a pending send.
	defaultConfirmWindow = 30 * time.Second

	// defaultSendTimeout bounds how long a pending send may stay
	// unconfirmed before it is surfaced as a failure.
	defaultSendTimeout = 10 * time.Second
)

// Entry is one rendered row of the chat view. Pending entries are local
// placeholders awaiting server confirmation; their ID is the local temporary
// id, never a server id.
type Entry struct {
	models.MessagePayload
	Pending bool
}

type pendingSend struct {
	localID  string
	content  string
	mediaID  string
	stagedAt time.Time
}

// Timeline reconciles the two message feeds of one chat into a single
// duplicate-free, chronologically ordered view. REST pages are authoritative
// history, pushes are authoritative news; arrival order of either must not
// change the final order. Safe for concurrent use.
type Timeline struct {
	mu            sync.Mutex
	selfID        string
	confirmWindow time.Duration
	sendTimeout   time.Duration
	confirmed     map[string]models.MessagePayload
	pending       []pendingSend
}

// NewTimeline creates the view for one chat as seen by selfProfileID.
func NewTimeline(selfProfileID string) *Timeline {
	return &Timeline{
		selfID:        selfProfileID,
		confirmWindow: defaultConfirmWindow,
		sendTimeout:   defaultSendTimeout,
		confirmed:     make(map[string]models.MessagePayload),
	}
}

// SetLimits overrides the confirmation tolerance window and the pending-send
// failure deadline.
func (t *Timeline) SetLimits(confirmWindow, sendTimeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirmWindow = confirmWindow
	t.sendTimeout = sendTimeout
}

// MergePage folds one REST page into the view. Already-known messages are
// skipped, so re-fetching any page after a reconnect is a no-op; a page may
// also confirm a pending send whose push was missed during a network gap.
func (t *Timeline) MergePage(page []models.MessagePayload) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, message := range page {
		t.absorb(message)
	}
}

// ApplyPush folds one realtime push into the view. Returns false when the
// message was already known and nothing changed.
func (t *Timeline) ApplyPush(message models.MessagePayload) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.absorb(message)
}

// absorb inserts a server-confirmed message, dropping duplicates by server
// id and retiring the pending placeholder it confirms, if any. Caller holds
// the lock.
func (t *Timeline) absorb(message models.MessagePayload) bool {
	if _, exists := t.confirmed[message.MessageID]; exists {
		return false
	}
	t.confirmed[message.MessageID] = message

	if message.SenderID != t.selfID {
		return true
	}

	// A pending send is confirmed by content and time, never by id: the
	// placeholder's id is local and the server's id is unknowable up front.
	createdAt, err := time.Parse(models.TimeLayout, message.CreatedAt)
	if err != nil {
		return true
	}
	for i, p := range t.pending {
		if p.content != message.Content || p.mediaID != message.MediaID {
			continue
		}
		delta := createdAt.Sub(p.stagedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= t.confirmWindow {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			break
		}
	}
	return true
}

// StageSend inserts the optimistic placeholder for a message the user just
// sent and returns its local temporary id.
func (t *Timeline) StageSend(content, mediaID string, now time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	localID := "pending-" + uuid.NewString()
	t.pending = append(t.pending, pendingSend{
		localID:  localID,
		content:  content,
		mediaID:  mediaID,
		stagedAt: now,
	})
	return localID
}

// ExpirePending removes placeholders whose confirmation never arrived within
// the send timeout and returns their local ids so the UI can surface the
// failures. A placeholder never outlives its deadline silently.
func (t *Timeline) ExpirePending(now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var failed []string
	kept := t.pending[:0]
	for _, p := range t.pending {
		if now.Sub(p.stagedAt) > t.sendTimeout {
			failed = append(failed, p.localID)
			continue
		}
		kept = append(kept, p)
	}
	t.pending = kept
	return failed
}

// PendingCount reports how many sends still await confirmation.
func (t *Timeline) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Entries returns the rendered view: confirmed messages ordered by server
// timestamp (id as tiebreaker), then pending placeholders in staging order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]Entry, 0, len(t.confirmed)+len(t.pending))
	for _, message := range t.confirmed {
		entries = append(entries, Entry{MessagePayload: message})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt != entries[j].CreatedAt {
			return entries[i].CreatedAt < entries[j].CreatedAt
		}
		return entries[i].MessageID < entries[j].MessageID
	})

	for _, p := range t.pending {
		entries = append(entries, Entry{
			MessagePayload: models.MessagePayload{
				Message: models.Message{
					MessageID: p.localID,
					SenderID:  t.selfID,
					Content:   p.content,
					MediaID:   p.mediaID,
					CreatedAt: p.stagedAt.UTC().Format(models.TimeLayout),
				},
			},
			Pending: true,
		})
	}
	return entries
}
