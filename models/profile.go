package models

// Profile is a dating profile. Owned by one account (UserID); display fields
// are mutable by the owner only.
type Profile struct {
	ProfileID string   `dynamodbav:"profileId" json:"id"`
	UserID    string   `dynamodbav:"userId" json:"userId"`
	FirstName string   `dynamodbav:"firstName" json:"firstName"`
	LastName  string   `dynamodbav:"lastName" json:"lastName"`
	Bio       string   `dynamodbav:"bio" json:"bio,omitempty"`
	City      string   `dynamodbav:"city" json:"city"`
	AvatarURL string   `dynamodbav:"avatarUrl" json:"avatarUrl,omitempty"`
	Interests []string `dynamodbav:"interests" json:"interests,omitempty"`
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt string   `dynamodbav:"updatedAt" json:"updatedAt,omitempty"`
}

// ProfileSummary is the trimmed-down shape embedded in chat and message
// responses.
type ProfileSummary struct {
	ProfileID string `dynamodbav:"profileId" json:"id"`
	FirstName string `dynamodbav:"firstName" json:"firstName"`
	LastName  string `dynamodbav:"lastName" json:"lastName"`
	AvatarURL string `dynamodbav:"avatarUrl" json:"avatarUrl,omitempty"`
}

// Summary returns the embeddable view of a profile.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ProfileID: p.ProfileID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		AvatarURL: p.AvatarURL,
	}
}
