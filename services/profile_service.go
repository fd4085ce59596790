package services

import (
	"context"
	"fmt"
	"sort"

	"chispa_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// minSameCityCandidates is the point below which the candidate search widens
// beyond the caller's city.
const minSameCityCandidates = 5

// ProfileService is the profile directory: lookup, owner updates and the
// candidate scan the swipe feed draws from.
type ProfileService struct {
	Dynamo DynamoAPI
}

// GetProfile retrieves a profile by its id.
func (ps *ProfileService) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	key := map[string]types.AttributeValue{
		"profileId": &types.AttributeValueMemberS{Value: profileID},
	}
	item, err := ps.Dynamo.GetItem(ctx, models.ProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByUserID resolves the profile owned by an account, via the
// userId GSI. This is how an authenticated request becomes a profile.
func (ps *ProfileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	keyCondition := "userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := ps.Dynamo.QueryItemsWithIndex(ctx, models.ProfilesTable, models.UserIDIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile for user: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(items[0], &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// ProfileUpdate carries the owner-mutable fields of a profile.
type ProfileUpdate struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Bio       string   `json:"bio"`
	City      string   `json:"city"`
	AvatarURL string   `json:"avatarUrl"`
	Interests []string `json:"interests"`
}

// UpdateProfile applies an owner update and returns the stored profile.
func (ps *ProfileService) UpdateProfile(ctx context.Context, profileID string, update ProfileUpdate) (*models.Profile, error) {
	interests := update.Interests
	if interests == nil {
		interests = []string{}
	}
	interestValues := make([]types.AttributeValue, 0, len(interests))
	for _, interest := range interests {
		interestValues = append(interestValues, &types.AttributeValueMemberS{Value: interest})
	}

	updateExpression := "SET firstName = :firstName, lastName = :lastName, bio = :bio, city = :city, avatarUrl = :avatarUrl, interests = :interests, updatedAt = :updatedAt"
	key := map[string]types.AttributeValue{
		"profileId": &types.AttributeValueMemberS{Value: profileID},
	}
	expressionValues := map[string]types.AttributeValue{
		":firstName": &types.AttributeValueMemberS{Value: update.FirstName},
		":lastName":  &types.AttributeValueMemberS{Value: update.LastName},
		":bio":       &types.AttributeValueMemberS{Value: update.Bio},
		":city":      &types.AttributeValueMemberS{Value: update.City},
		":avatarUrl": &types.AttributeValueMemberS{Value: update.AvatarURL},
		":interests": &types.AttributeValueMemberL{Value: interestValues},
		":updatedAt": &types.AttributeValueMemberS{Value: models.Now()},
	}

	attrs, err := ps.Dynamo.UpdateItem(ctx, models.ProfilesTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse updated profile: %w", err)
	}
	return &profile, nil
}

// FindCandidates scans for swipe candidates for the given profile. The
// exclusion set must already be complete (self, every swiped target, every
// matched partner); profiles in it never come back. Same-city profiles fill
// the feed first, newest profile first; the search widens to other cities
// only when fewer than minSameCityCandidates remain.
func (ps *ProfileService) FindCandidates(ctx context.Context, current models.Profile, exclude map[string]struct{}, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := ps.Dynamo.ScanWithFilter(ctx, models.ProfilesTable, func(item map[string]types.AttributeValue) bool {
		idAttr, ok := item["profileId"].(*types.AttributeValueMemberS)
		if !ok {
			return false
		}
		if _, excluded := exclude[idAttr.Value]; excluded {
			return false
		}
		return true
	}, map[string]string{"userId": current.UserID}, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt > profiles[j].CreatedAt
	})

	sameCity := make([]models.Profile, 0, limit)
	otherCities := make([]models.Profile, 0, limit)
	for _, profile := range profiles {
		if profile.City == current.City {
			sameCity = append(sameCity, profile)
		} else {
			otherCities = append(otherCities, profile)
		}
	}

	if len(sameCity) > limit {
		sameCity = sameCity[:limit]
	}
	candidates := sameCity
	if len(candidates) < minSameCityCandidates {
		for _, profile := range otherCities {
			if len(candidates) >= limit {
				break
			}
			candidates = append(candidates, profile)
		}
	}

	return candidates, nil
}
