package models

// DynamoDB table names
const (
	ProfilesTable = "Profiles"
	SwipesTable   = "Swipes"
	MatchesTable  = "Matches"
	ChatsTable    = "Chats"
	MessagesTable = "Messages"
	MediaTable    = "Media"
)

// Global secondary indexes
const (
	UserIDIndex   = "userId-index"   // Profiles: account id -> profile
	ProfileAIndex = "profileA-index" // Matches/Chats: first participant
	ProfileBIndex = "profileB-index" // Matches/Chats: second participant
)

// Swipe actions
const (
	SwipeActionLike    = "like"
	SwipeActionDislike = "dislike"
)

// Media attachment targets
const (
	MediaTypeProfile = "profile"
	MediaTypeMessage = "message"
)
