package models

// Chat is the single conversation attached to a match. The participant pair
// is fixed at creation. LastMessage/LastMessageAt are a denormalized cache of
// the message log; they may lag but never move backward in time.
type Chat struct {
	ChatID        string `dynamodbav:"chatId" json:"id"`
	MatchID       string `dynamodbav:"matchId" json:"matchId"`
	ProfileA      string `dynamodbav:"profileA" json:"profileA"`
	ProfileB      string `dynamodbav:"profileB" json:"profileB"`
	LastMessage   string `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt string `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether the profile is one of the chat's two
// participants.
func (c Chat) HasParticipant(profileID string) bool {
	return c.ProfileA == profileID || c.ProfileB == profileID
}

// Counterpart returns the other participant's profile id.
func (c Chat) Counterpart(profileID string) string {
	if c.ProfileA == profileID {
		return c.ProfileB
	}
	return c.ProfileA
}

// ChatSummary is the chat list entry: counterpart identity plus the cached
// last-message denormalization.
type ChatSummary struct {
	ChatID        string         `json:"id"`
	OtherUser     ProfileSummary `json:"otherUser"`
	LastMessage   string         `json:"lastMessage,omitempty"`
	LastMessageAt string         `json:"lastMessageAt,omitempty"`
	CreatedAt     string         `json:"createdAt"`
}
