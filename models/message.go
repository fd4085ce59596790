package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the fixed-width UTC timestamp format used on every persisted
// record. Fixed width keeps lexicographic order equal to chronological order,
// which the last-message guard's string comparison relies on.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Now returns the current UTC time rendered in TimeLayout.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}

// Message is one entry in a chat's durable log. Immutable after creation
// except for Read, which only ever flips false -> true. Content and MediaID
// are never both empty.
type Message struct {
	ChatID    string `dynamodbav:"chatId" json:"chatId"`
	MessageID string `dynamodbav:"messageId" json:"id"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Content   string `dynamodbav:"content" json:"content,omitempty"`
	MediaID   string `dynamodbav:"mediaId,omitempty" json:"mediaId,omitempty"`
	Read      bool   `dynamodbav:"read" json:"read"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// NewMessageID builds a server-assigned message id. The UnixNano prefix makes
// ids sort in creation order, so the Messages sort key doubles as the page
// ordering; the uuid suffix keeps concurrent sends unique.
func NewMessageID(at time.Time) string {
	return fmt.Sprintf("%020d#%s", at.UnixNano(), uuid.NewString())
}

// MessagePayload is the fully-resolved message shape broadcast to room
// members and returned by the REST message endpoints: the message plus the
// sender summary and the attached media, if any.
type MessagePayload struct {
	Message
	Sender ProfileSummary `json:"sender"`
	Media  *Media         `json:"media,omitempty"`
}

// MessagePage is one page of a chat's log, oldest first. HasMore is true
// exactly when the page came back full.
type MessagePage struct {
	Messages []MessagePayload `json:"messages"`
	HasMore  bool             `json:"hasMore"`
	Page     int              `json:"page"`
}
