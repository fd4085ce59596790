package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"chispa_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableKeys mirrors the primary key schema of each table so the fake can
// address items the way DynamoDB does.
var tableKeys = map[string][]string{
	models.ProfilesTable: {"profileId"},
	models.SwipesTable:   {"actorId", "targetId"},
	models.MatchesTable:  {"pairKey"},
	models.ChatsTable:    {"chatId"},
	models.MessagesTable: {"chatId", "messageId"},
	models.MediaTable:    {"mediaId"},
}

// fakeDynamo is an in-memory DynamoAPI double. It emulates the condition and
// key expressions the services actually use, with every operation serialized
// under one lock so conditional-write races behave like the real store.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

var _ DynamoAPI = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = make(map[string]map[string]types.AttributeValue)
	}
	return f.tables[name]
}

func (f *fakeDynamo) keyOf(tableName string, item map[string]types.AttributeValue) string {
	parts := make([]string, 0, 2)
	for _, attr := range tableKeys[tableName] {
		parts = append(parts, avString(item[attr]))
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) itemCount(tableName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[tableName])
}

func avString(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func avEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}

// evalCondition handles the expression subset the services use:
// attribute_exists / attribute_not_exists, =, <>, <=, one level of AND or OR.
func evalCondition(cond string, item map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) bool {
	if parts := strings.Split(cond, " OR "); len(parts) > 1 {
		for _, part := range parts {
			if evalCondition(part, item, values, names) {
				return true
			}
		}
		return false
	}
	if parts := strings.Split(cond, " AND "); len(parts) > 1 {
		for _, part := range parts {
			if !evalCondition(part, item, values, names) {
				return false
			}
		}
		return true
	}

	cond = strings.TrimSpace(cond)
	resolve := func(attr string) string {
		if resolved, ok := names[attr]; ok {
			return resolved
		}
		return attr
	}

	if strings.HasPrefix(cond, "attribute_not_exists(") {
		attr := resolve(strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_not_exists("), ")"))
		if item == nil {
			return true
		}
		_, exists := item[attr]
		return !exists
	}
	if strings.HasPrefix(cond, "attribute_exists(") {
		attr := resolve(strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_exists("), ")"))
		if item == nil {
			return false
		}
		_, exists := item[attr]
		return exists
	}

	for _, op := range []string{"<=", "<>", "="} {
		marker := " " + op + " "
		idx := strings.Index(cond, marker)
		if idx < 0 {
			continue
		}
		attr := resolve(strings.TrimSpace(cond[:idx]))
		want := values[strings.TrimSpace(cond[idx+len(marker):])]
		if item == nil {
			return false
		}
		got, exists := item[attr]
		if !exists {
			return false
		}
		switch op {
		case "<=":
			return avString(got) <= avString(want)
		case "<>":
			return !avEqual(got, want)
		case "=":
			return avEqual(got, want)
		}
	}
	return false
}

func applySet(item map[string]types.AttributeValue, updateExpression string, values map[string]types.AttributeValue, names map[string]string) {
	expr := strings.TrimPrefix(updateExpression, "SET ")
	for _, clause := range strings.Split(expr, ",") {
		parts := strings.SplitN(clause, "=", 2)
		attr := strings.TrimSpace(parts[0])
		if resolved, ok := names[attr]; ok {
			attr = resolved
		}
		item[attr] = values[strings.TrimSpace(parts[1])]
	}
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.table(tableName)[f.keyOf(tableName, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyItem(item), nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.table(tableName)[f.keyOf(tableName, marshaled)] = marshaled
	return nil
}

func (f *fakeDynamo) PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, conditionExpression string) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing := f.table(tableName)[f.keyOf(tableName, marshaled)]
	if !evalCondition(conditionExpression, existing, nil, nil) {
		return ErrConditionFailed
	}
	f.table(tableName)[f.keyOf(tableName, marshaled)] = marshaled
	return nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, tableName string, updateExpression string, key map[string]types.AttributeValue, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.keyOf(tableName, key)
	item, ok := f.table(tableName)[id]
	if !ok {
		item = copyItem(key)
	}
	applySet(item, updateExpression, expressionAttributeValues, expressionAttributeNames)
	f.table(tableName)[id] = item
	return copyItem(item), nil
}

func (f *fakeDynamo) UpdateItemWithCondition(ctx context.Context, tableName string, key map[string]types.AttributeValue, updateExpression, conditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.keyOf(tableName, key)
	item, ok := f.table(tableName)[id]
	var existing map[string]types.AttributeValue
	if ok {
		existing = item
	}
	if !evalCondition(conditionExpression, existing, expressionAttributeValues, expressionAttributeNames) {
		return nil, ErrConditionFailed
	}
	if !ok {
		item = copyItem(key)
	}
	applySet(item, updateExpression, expressionAttributeValues, expressionAttributeNames)
	f.table(tableName)[id] = item
	return copyItem(item), nil
}

// query filters by the single "attr = :value" equality every service query
// uses, against the base table or any GSI alike.
func (f *fakeDynamo) query(tableName, keyConditionExpression string, values map[string]types.AttributeValue) []map[string]types.AttributeValue {
	parts := strings.SplitN(keyConditionExpression, "=", 2)
	attr := strings.TrimSpace(parts[0])
	want := values[strings.TrimSpace(parts[1])]

	var items []map[string]types.AttributeValue
	for _, item := range f.table(tableName) {
		if got, ok := item[attr]; ok && avEqual(got, want) {
			items = append(items, copyItem(item))
		}
	}
	return items
}

func (f *fakeDynamo) QueryItems(ctx context.Context, tableName, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.query(tableName, keyConditionExpression, expressionAttributeValues)
	if int32(len(items)) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeDynamo) QueryItemsWithIndex(ctx context.Context, tableName, indexName, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	return f.QueryItems(ctx, tableName, keyConditionExpression, expressionAttributeValues, expressionAttributeNames, limit)
}

func (f *fakeDynamo) QueryItemsWithOptions(ctx context.Context, tableName, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32, latestFirst bool) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.query(tableName, keyConditionExpression, expressionAttributeValues)
	sortKey := tableKeys[tableName][len(tableKeys[tableName])-1]
	sort.SliceStable(items, func(i, j int) bool {
		if latestFirst {
			return avString(items[i][sortKey]) > avString(items[j][sortKey])
		}
		return avString(items[i][sortKey]) < avString(items[j][sortKey])
	})
	if int32(len(items)) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeDynamo) TransactPutItems(ctx context.Context, puts []TransactPut) error {
	marshaled := make([]map[string]types.AttributeValue, len(puts))
	for i, put := range puts {
		item, err := attributevalue.MarshalMap(put.Item)
		if err != nil {
			return err
		}
		marshaled[i] = item
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, put := range puts {
		if put.ConditionExpression == "" {
			continue
		}
		existing := f.table(put.TableName)[f.keyOf(put.TableName, marshaled[i])]
		if !evalCondition(put.ConditionExpression, existing, nil, nil) {
			return ErrConditionFailed
		}
	}
	for i, put := range puts {
		f.table(put.TableName)[f.keyOf(put.TableName, marshaled[i])] = marshaled[i]
	}
	return nil
}

func (f *fakeDynamo) ScanWithFilter(ctx context.Context, tableName string, filterFunc func(map[string]types.AttributeValue) bool, excludeFields map[string]string, result interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.table(tableName) {
		excluded := false
		for attr, value := range excludeFields {
			if avString(item[attr]) == value {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if filterFunc == nil || filterFunc(item) {
			items = append(items, copyItem(item))
		}
	}
	return attributevalue.UnmarshalListOfMaps(items, result)
}
