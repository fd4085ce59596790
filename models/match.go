package models

import "strings"

// Match is the bidirectional relationship created when two profiles mutually
// like each other. Keyed by the canonicalized unordered pair so concurrent
// mutual likes can collide on a single row; carries the chat id created in
// the same transaction.
type Match struct {
	PairKey   string `dynamodbav:"pairKey" json:"-"`
	MatchID   string `dynamodbav:"matchId" json:"id"`
	ChatID    string `dynamodbav:"chatId" json:"chatId"`
	ProfileA  string `dynamodbav:"profileA" json:"profileA"`
	ProfileB  string `dynamodbav:"profileB" json:"profileB"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// PairKeyFor canonicalizes an unordered profile pair into the Matches
// partition key: lexicographically smaller id first.
func PairKeyFor(profileA, profileB string) string {
	if strings.Compare(profileA, profileB) > 0 {
		profileA, profileB = profileB, profileA
	}
	return profileA + "#" + profileB
}

// Counterpart returns the other participant's profile id.
func (m Match) Counterpart(profileID string) string {
	if m.ProfileA == profileID {
		return m.ProfileB
	}
	return m.ProfileA
}

// MatchWithProfile is the match list entry returned to clients: the match,
// the counterpart's profile and the chat summary.
type MatchWithProfile struct {
	MatchID   string       `json:"id"`
	CreatedAt string       `json:"createdAt"`
	Profile   Profile      `json:"user"`
	Chat      *ChatSummary `json:"chat,omitempty"`
}

// SwipeResult is the response to a like: the match and chat when the like
// completed a mutual pair, nil otherwise.
type SwipeResult struct {
	Match *Match `json:"match"`
	Chat  *Chat  `json:"chat,omitempty"`
}
