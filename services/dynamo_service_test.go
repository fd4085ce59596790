package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedQueryClient serves a canned sequence of Query responses, the way
// DynamoDB splits a result that exceeds the response size cap.
type pagedQueryClient struct {
	DynamoDBClient
	pages  []*dynamodb.QueryOutput
	inputs []*dynamodb.QueryInput
}

func (c *pagedQueryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	// Snapshot the input: the caller may reuse the same struct for the
	// next request, and we assert on per-call values.
	snapshot := *params
	c.inputs = append(c.inputs, &snapshot)
	if len(c.pages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	page := c.pages[0]
	c.pages = c.pages[1:]
	return page, nil
}

func messageItems(from, to int) []map[string]types.AttributeValue {
	var items []map[string]types.AttributeValue
	for i := from; i < to; i++ {
		items = append(items, map[string]types.AttributeValue{
			"chatId":    &types.AttributeValueMemberS{Value: "chat-1"},
			"messageId": &types.AttributeValueMemberS{Value: fmt.Sprintf("%020d", i)},
		})
	}
	return items
}

func TestQueryItemsWithOptionsFollowsLastEvaluatedKey(t *testing.T) {
	ctx := context.Background()
	continueKey := map[string]types.AttributeValue{
		"messageId": &types.AttributeValueMemberS{Value: fmt.Sprintf("%020d", 2)},
	}
	client := &pagedQueryClient{pages: []*dynamodb.QueryOutput{
		{Items: messageItems(0, 3), LastEvaluatedKey: continueKey},
		{Items: messageItems(3, 6)},
	}}
	service := &DynamoService{Client: client}

	items, err := service.QueryItemsWithOptions(ctx, "Messages", "chatId = :chatId", map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: "chat-1"},
	}, nil, 10, false)
	require.NoError(t, err)

	// Both response chunks land in one logical page, in order.
	require.Len(t, items, 6)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("%020d", i), avString(item["messageId"]))
	}

	// The second request continued from where the first stopped.
	require.Len(t, client.inputs, 2)
	assert.Nil(t, client.inputs[0].ExclusiveStartKey)
	assert.Equal(t, continueKey, client.inputs[1].ExclusiveStartKey)
}

func TestQueryItemsWithOptionsStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	client := &pagedQueryClient{pages: []*dynamodb.QueryOutput{
		{Items: messageItems(0, 4), LastEvaluatedKey: map[string]types.AttributeValue{
			"messageId": &types.AttributeValueMemberS{Value: fmt.Sprintf("%020d", 3)},
		}},
		{Items: messageItems(4, 8)},
	}}
	service := &DynamoService{Client: client}

	items, err := service.QueryItemsWithOptions(ctx, "Messages", "chatId = :chatId", map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: "chat-1"},
	}, nil, 4, false)
	require.NoError(t, err)

	// The limit was satisfied by the first chunk; no follow-up request.
	assert.Len(t, items, 4)
	assert.Len(t, client.inputs, 1)
}
