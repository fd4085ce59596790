package models

// Media is an opaque reference to an uploaded blob. Attached to at most one
// message or one profile avatar, never both.
type Media struct {
	MediaID   string `dynamodbav:"mediaId" json:"id"`
	URL       string `dynamodbav:"url" json:"url"`
	Key       string `dynamodbav:"key" json:"-"`
	Type      string `dynamodbav:"type" json:"type"`
	MimeType  string `dynamodbav:"mimeType" json:"mimeType"`
	Size      int64  `dynamodbav:"size" json:"size"`
	ProfileID string `dynamodbav:"profileId,omitempty" json:"profileId,omitempty"`
	MessageID string `dynamodbav:"messageId,omitempty" json:"messageId,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}
