package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"chispa_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// exclusionQueryLimit caps the swipe/match history pulled when assembling a
// candidate exclusion set.
const exclusionQueryLimit = 1000

// SwipeService is the swipe ledger and match engine. Every decision is an
// append-only row; mutual likes are converted into exactly one match and one
// chat per pair, with the race between two concurrent mutual likes settled by
// DynamoDB condition expressions rather than any in-process coordination
// (multiple gateway processes may run behind a load balancer).
type SwipeService struct {
	Dynamo   DynamoAPI
	Profiles *ProfileService
}

// RecordLike appends a like from actor to target. A repeat decision on the
// same ordered pair returns ErrAlreadyDecided and changes nothing. When the
// mirror like already exists the pair is matched: the result carries the
// match and its chat, whichever concurrent caller actually created them.
func (ss *SwipeService) RecordLike(ctx context.Context, actorID, targetID string) (*models.SwipeResult, error) {
	if actorID == targetID {
		return nil, ErrSelfSwipe
	}
	if _, err := ss.Profiles.GetProfile(ctx, targetID); err != nil {
		return nil, fmt.Errorf("candidate profile: %w", err)
	}

	if err := ss.insertSwipe(ctx, actorID, targetID, models.SwipeActionLike); err != nil {
		return nil, err
	}

	mirror, err := ss.getSwipe(ctx, targetID, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &models.SwipeResult{}, nil
		}
		return nil, err
	}
	if mirror.Action != models.SwipeActionLike {
		return &models.SwipeResult{}, nil
	}

	return ss.createMatch(ctx, actorID, targetID)
}

// RecordDislike appends a dislike. Same uniqueness rule as RecordLike;
// terminal, no match detection.
func (ss *SwipeService) RecordDislike(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfSwipe
	}
	if _, err := ss.Profiles.GetProfile(ctx, targetID); err != nil {
		return fmt.Errorf("candidate profile: %w", err)
	}
	return ss.insertSwipe(ctx, actorID, targetID, models.SwipeActionDislike)
}

func (ss *SwipeService) insertSwipe(ctx context.Context, actorID, targetID, action string) error {
	swipe := models.Swipe{
		ActorID:   actorID,
		TargetID:  targetID,
		Action:    action,
		CreatedAt: models.Now(),
	}

	err := ss.Dynamo.PutItemIfAbsent(ctx, models.SwipesTable, swipe,
		"attribute_not_exists(actorId) AND attribute_not_exists(targetId)")
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return ErrAlreadyDecided
		}
		return fmt.Errorf("failed to record swipe: %w", err)
	}
	return nil
}

func (ss *SwipeService) getSwipe(ctx context.Context, actorID, targetID string) (*models.Swipe, error) {
	key := map[string]types.AttributeValue{
		"actorId":  &types.AttributeValueMemberS{Value: actorID},
		"targetId": &types.AttributeValueMemberS{Value: targetID},
	}
	item, err := ss.Dynamo.GetItem(ctx, models.SwipesTable, key)
	if err != nil {
		return nil, err
	}

	var swipe models.Swipe
	if err := attributevalue.UnmarshalMap(item, &swipe); err != nil {
		return nil, fmt.Errorf("failed to parse swipe: %w", err)
	}
	return &swipe, nil
}

// createMatch writes the match and its chat as one transaction keyed by the
// canonicalized pair. Both concurrent mutual likes may reach this point; the
// loser's transaction is rejected by the pairKey condition and it silently
// adopts the winner's rows. A match can therefore never exist without its
// chat, and no pair ever gets two of either.
func (ss *SwipeService) createMatch(ctx context.Context, actorID, targetID string) (*models.SwipeResult, error) {
	now := models.Now()
	match := models.Match{
		PairKey:   models.PairKeyFor(actorID, targetID),
		MatchID:   uuid.NewString(),
		ChatID:    uuid.NewString(),
		ProfileA:  actorID,
		ProfileB:  targetID,
		CreatedAt: now,
	}
	chat := models.Chat{
		ChatID:    match.ChatID,
		MatchID:   match.MatchID,
		ProfileA:  actorID,
		ProfileB:  targetID,
		CreatedAt: now,
	}

	err := ss.Dynamo.TransactPutItems(ctx, []TransactPut{
		{TableName: models.MatchesTable, Item: match, ConditionExpression: "attribute_not_exists(pairKey)"},
		{TableName: models.ChatsTable, Item: chat, ConditionExpression: "attribute_not_exists(chatId)"},
	})
	if err == nil {
		log.Printf("🎉 Match created: %s ❤️ %s", actorID, targetID)
		return &models.SwipeResult{Match: &match, Chat: &chat}, nil
	}
	if !errors.Is(err, ErrConditionFailed) {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	// Lost the race: the mirror like got there first. Adopt its rows.
	existing, chatRow, err := ss.getMatchByPair(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: match exists but could not be read back", ErrConflict)
	}
	return &models.SwipeResult{Match: existing, Chat: chatRow}, nil
}

func (ss *SwipeService) getMatchByPair(ctx context.Context, profileA, profileB string) (*models.Match, *models.Chat, error) {
	key := map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: models.PairKeyFor(profileA, profileB)},
	}
	item, err := ss.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, nil, err
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, nil, fmt.Errorf("failed to parse match: %w", err)
	}

	chatItem, err := ss.Dynamo.GetItem(ctx, models.ChatsTable, map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: match.ChatID},
	})
	if err != nil {
		return nil, nil, err
	}
	var chat models.Chat
	if err := attributevalue.UnmarshalMap(chatItem, &chat); err != nil {
		return nil, nil, fmt.Errorf("failed to parse chat: %w", err)
	}

	return &match, &chat, nil
}

// MatchesForProfile returns every match the profile participates in.
func (ss *SwipeService) MatchesForProfile(ctx context.Context, profileID string) ([]models.Match, error) {
	var matches []models.Match
	for _, index := range []struct{ name, attr string }{
		{models.ProfileAIndex, "profileA"},
		{models.ProfileBIndex, "profileB"},
	} {
		keyCondition := fmt.Sprintf("%s = :profileId", index.attr)
		expressionValues := map[string]types.AttributeValue{
			":profileId": &types.AttributeValueMemberS{Value: profileID},
		}
		items, err := ss.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index.name, keyCondition, expressionValues, nil, exclusionQueryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to query matches: %w", err)
		}

		var page []models.Match
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, fmt.Errorf("failed to parse matches: %w", err)
		}
		matches = append(matches, page...)
	}
	return matches, nil
}

// ListMatches returns the profile's matches enriched with the counterpart's
// profile and the chat summary, newest match first.
func (ss *SwipeService) ListMatches(ctx context.Context, profileID string) ([]models.MatchWithProfile, error) {
	matches, err := ss.MatchesForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	result := make([]models.MatchWithProfile, 0, len(matches))
	for _, match := range matches {
		counterpart, err := ss.Profiles.GetProfile(ctx, match.Counterpart(profileID))
		if err != nil {
			log.Printf("⚠️ Skipping match %s: counterpart profile missing", match.MatchID)
			continue
		}

		entry := models.MatchWithProfile{
			MatchID:   match.MatchID,
			CreatedAt: match.CreatedAt,
			Profile:   *counterpart,
		}

		chatItem, err := ss.Dynamo.GetItem(ctx, models.ChatsTable, map[string]types.AttributeValue{
			"chatId": &types.AttributeValueMemberS{Value: match.ChatID},
		})
		if err == nil {
			var chat models.Chat
			if err := attributevalue.UnmarshalMap(chatItem, &chat); err == nil {
				entry.Chat = &models.ChatSummary{
					ChatID:        chat.ChatID,
					OtherUser:     counterpart.Summary(),
					LastMessage:   chat.LastMessage,
					LastMessageAt: chat.LastMessageAt,
					CreatedAt:     chat.CreatedAt,
				}
			}
		}

		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result, nil
}

// ListCandidates returns swipe candidates for the profile. The exclusion set
// is complete by construction: the profile itself, every target it already
// swiped on and every matched partner. A profile that slipped through any of
// those must never reappear in the feed.
func (ss *SwipeService) ListCandidates(ctx context.Context, current models.Profile, limit int) ([]models.Profile, error) {
	exclude := map[string]struct{}{
		current.ProfileID: {},
	}

	keyCondition := "actorId = :actorId"
	expressionValues := map[string]types.AttributeValue{
		":actorId": &types.AttributeValueMemberS{Value: current.ProfileID},
	}
	items, err := ss.Dynamo.QueryItems(ctx, models.SwipesTable, keyCondition, expressionValues, nil, exclusionQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query swipes: %w", err)
	}
	var swipes []models.Swipe
	if err := attributevalue.UnmarshalListOfMaps(items, &swipes); err != nil {
		return nil, fmt.Errorf("failed to parse swipes: %w", err)
	}
	for _, swipe := range swipes {
		exclude[swipe.TargetID] = struct{}{}
	}

	matches, err := ss.MatchesForProfile(ctx, current.ProfileID)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		exclude[match.Counterpart(current.ProfileID)] = struct{}{}
	}

	return ss.Profiles.FindCandidates(ctx, current, exclude, limit)
}
