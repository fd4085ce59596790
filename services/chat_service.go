package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"chispa_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mediaSummaryPlaceholder is what the chat list shows for a media-only
// message. The client renders Spanish copy, so the cached summary does too.
const mediaSummaryPlaceholder = "Imagen"

// ChatService is the chat store: the durable per-chat message log, the
// denormalized last-message cache and the read flags. The realtime gateway
// and the REST fallback both go through AppendMessage, so the participant and
// payload validation cannot diverge between paths.
type ChatService struct {
	Dynamo   DynamoAPI
	Profiles *ProfileService
	Media    *MediaService
}

// GetChat retrieves a chat by id.
func (cs *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	item, err := cs.Dynamo.GetItem(ctx, models.ChatsTable, key)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse chat: %w", err)
	}
	return &chat, nil
}

// ChatsForProfile returns every chat the profile participates in. The
// gateway uses this for the bulk room join on connect.
func (cs *ChatService) ChatsForProfile(ctx context.Context, profileID string) ([]models.Chat, error) {
	var chats []models.Chat
	for _, index := range []struct{ name, attr string }{
		{models.ProfileAIndex, "profileA"},
		{models.ProfileBIndex, "profileB"},
	} {
		keyCondition := fmt.Sprintf("%s = :profileId", index.attr)
		expressionValues := map[string]types.AttributeValue{
			":profileId": &types.AttributeValueMemberS{Value: profileID},
		}
		items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ChatsTable, index.name, keyCondition, expressionValues, nil, exclusionQueryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to query chats: %w", err)
		}

		var page []models.Chat
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, fmt.Errorf("failed to parse chats: %w", err)
		}
		chats = append(chats, page...)
	}
	return chats, nil
}

// ListChats returns the profile's chat list entries, most recent activity
// first, each with the counterpart's summary and the cached last message.
func (cs *ChatService) ListChats(ctx context.Context, profileID string) ([]models.ChatSummary, error) {
	chats, err := cs.ChatsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		counterpart, err := cs.Profiles.GetProfile(ctx, chat.Counterpart(profileID))
		if err != nil {
			log.Printf("⚠️ Skipping chat %s: counterpart profile missing", chat.ChatID)
			continue
		}
		summaries = append(summaries, models.ChatSummary{
			ChatID:        chat.ChatID,
			OtherUser:     counterpart.Summary(),
			LastMessage:   chat.LastMessage,
			LastMessageAt: chat.LastMessageAt,
			CreatedAt:     chat.CreatedAt,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return chatActivity(summaries[i]) > chatActivity(summaries[j])
	})
	return summaries, nil
}

func chatActivity(summary models.ChatSummary) string {
	if summary.LastMessageAt != "" {
		return summary.LastMessageAt
	}
	return summary.CreatedAt
}

// AppendMessage validates and persists one message. The sender must be one
// of the chat's two participants and the message must carry content or
// media; violations persist nothing. The returned payload is fully resolved
// (sender summary, attached media) and ready to broadcast.
func (cs *ChatService) AppendMessage(ctx context.Context, chatID, senderID, content, mediaID string) (*models.MessagePayload, error) {
	chat, err := cs.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, ErrUnauthorized
	}
	if content == "" && mediaID == "" {
		return nil, ErrEmptyMessage
	}

	sender, err := cs.Profiles.GetProfile(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("sender profile: %w", err)
	}

	now := time.Now().UTC()
	message := models.Message{
		ChatID:    chatID,
		MessageID: models.NewMessageID(now),
		SenderID:  senderID,
		Content:   content,
		MediaID:   mediaID,
		Read:      false,
		CreatedAt: now.Format(models.TimeLayout),
	}

	if err := cs.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	var media *models.Media
	if mediaID != "" {
		media, err = cs.Media.AttachToMessage(ctx, mediaID, message.MessageID)
		if err != nil {
			return nil, err
		}
	}

	cs.updateLastMessage(ctx, chatID, summaryFor(message), message.CreatedAt)

	return &models.MessagePayload{
		Message: message,
		Sender:  sender.Summary(),
		Media:   media,
	}, nil
}

func summaryFor(message models.Message) string {
	if message.Content != "" {
		return message.Content
	}
	return mediaSummaryPlaceholder
}

// updateLastMessage refreshes the chat's denormalized summary. The condition
// keeps an out-of-order write from moving lastMessageAt backward; losing it
// just means a newer message already owns the summary.
func (cs *ChatService) updateLastMessage(ctx context.Context, chatID, summary, createdAt string) {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	updateExpression := "SET lastMessage = :summary, lastMessageAt = :at"
	conditionExpression := "attribute_not_exists(lastMessageAt) OR lastMessageAt <= :at"
	expressionValues := map[string]types.AttributeValue{
		":summary": &types.AttributeValueMemberS{Value: summary},
		":at":      &types.AttributeValueMemberS{Value: createdAt},
	}

	_, err := cs.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, key, updateExpression, conditionExpression, expressionValues, nil)
	if err != nil && !errors.Is(err, ErrConditionFailed) {
		log.Printf("⚠️ Failed to update chat summary for %s: %v", chatID, err)
	}
}

// PageMessages returns one page of the chat's log, oldest first. Page 1 is
// the oldest slice; HasMore is true exactly when the page came back full.
// The client's merge logic depends on this ordering, so it is load-bearing.
func (cs *ChatService) PageMessages(ctx context.Context, chatID string, page, limit int) (*models.MessagePage, error) {
	chat, err := cs.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	// DynamoDB has no offset; pull the first page*limit items ascending and
	// slice the requested window.
	items, err := cs.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(page*limit), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].MessageID < messages[j].MessageID
	})

	start := (page - 1) * limit
	if start > len(messages) {
		start = len(messages)
	}
	end := start + limit
	if end > len(messages) {
		end = len(messages)
	}
	window := messages[start:end]

	senders := map[string]models.ProfileSummary{}
	for _, id := range []string{chat.ProfileA, chat.ProfileB} {
		if profile, err := cs.Profiles.GetProfile(ctx, id); err == nil {
			senders[id] = profile.Summary()
		}
	}

	payloads := make([]models.MessagePayload, 0, len(window))
	for _, message := range window {
		payload := models.MessagePayload{
			Message: message,
			Sender:  senders[message.SenderID],
		}
		if message.MediaID != "" {
			if media, err := cs.Media.GetMedia(ctx, message.MediaID); err == nil {
				payload.Media = media
			}
		}
		payloads = append(payloads, payload)
	}

	return &models.MessagePage{
		Messages: payloads,
		HasMore:  len(window) == limit,
		Page:     page,
	}, nil
}

// MarkMessagesRead flips read=true on the given message ids, but only for
// messages the reader received (never its own) that are still unread. The
// conditional update makes the whole operation idempotent; re-marking an
// already-read message is a no-op. Returns the ids that actually flipped.
func (cs *ChatService) MarkMessagesRead(ctx context.Context, chatID, readerID string, messageIDs []string) ([]string, error) {
	chat, err := cs.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(readerID) {
		return nil, ErrUnauthorized
	}

	flipped := make([]string, 0, len(messageIDs))
	for _, messageID := range messageIDs {
		key := map[string]types.AttributeValue{
			"chatId":    &types.AttributeValueMemberS{Value: chatID},
			"messageId": &types.AttributeValueMemberS{Value: messageID},
		}
		updateExpression := "SET #read = :true"
		conditionExpression := "attribute_exists(messageId) AND senderId <> :reader AND #read = :false"
		expressionValues := map[string]types.AttributeValue{
			":true":   &types.AttributeValueMemberBOOL{Value: true},
			":false":  &types.AttributeValueMemberBOOL{Value: false},
			":reader": &types.AttributeValueMemberS{Value: readerID},
		}
		expressionNames := map[string]string{"#read": "read"}

		_, err := cs.Dynamo.UpdateItemWithCondition(ctx, models.MessagesTable, key, updateExpression, conditionExpression, expressionValues, expressionNames)
		if err != nil {
			if errors.Is(err, ErrConditionFailed) {
				continue
			}
			return nil, fmt.Errorf("failed to mark message %s read: %w", messageID, err)
		}
		flipped = append(flipped, messageID)
	}

	return flipped, nil
}
