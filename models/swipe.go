package models

// Swipe is a one-time like/dislike decision from one profile toward another.
// At most one item exists per ordered (actor, target) pair; a repeat decision
// is rejected, never overwritten.
type Swipe struct {
	ActorID   string `dynamodbav:"actorId" json:"actorId"`
	TargetID  string `dynamodbav:"targetId" json:"targetId"`
	Action    string `dynamodbav:"action" json:"action"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}
