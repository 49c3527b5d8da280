package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Dynamo implements Store against a DynamoDB table.
type Dynamo struct {
	client *dynamodb.Client
	config Config
}

// NewDynamo creates a Store backed by the given DynamoDB client.
func NewDynamo(client *dynamodb.Client, config Config) *Dynamo {
	config.validate()
	return &Dynamo{
		client: client,
		config: config,
	}
}

// keyAttrs converts a Key to DynamoDB key attributes.
func keyAttrs(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.PK},
		"SK": &types.AttributeValueMemberS{Value: key.SK},
	}
}

// conditionExpr translates a Condition into a DynamoDB condition expression.
// Returns empty strings and nil values for the unconditional case.
func conditionExpr(cond Condition) (expr string, values map[string]types.AttributeValue) {
	switch cond.Kind {
	case CondNotExists:
		return "attribute_not_exists(PK)", nil
	case CondExists:
		return "attribute_exists(PK)", nil
	case CondVersion:
		return "version = :expected_version", map[string]types.AttributeValue{
			":expected_version": &types.AttributeValueMemberN{
				Value: strconv.FormatInt(cond.Version, 10),
			},
		}
	default:
		return "", nil
	}
}

// Get retrieves the item at key, returning ErrNotFound if missing.
func (d *Dynamo) Get(ctx context.Context, key Key) (Item, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.config.TableName),
		Key:            keyAttrs(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return Item(result.Item), nil
}

// Put writes item subject to cond.
func (d *Dynamo) Put(ctx context.Context, item Item, cond Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.config.TableName),
		Item:      item,
	}
	if expr, values := conditionExpr(cond); expr != "" {
		input.ConditionExpression = aws.String(expr)
		input.ExpressionAttributeValues = values
	}

	_, err := d.client.PutItem(ctx, input)
	return mapConditionError(err)
}

// Delete removes the item at key subject to cond.
func (d *Dynamo) Delete(ctx context.Context, key Key, cond Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(d.config.TableName),
		Key:       keyAttrs(key),
	}
	if expr, values := conditionExpr(cond); expr != "" {
		input.ConditionExpression = aws.String(expr)
		input.ExpressionAttributeValues = values
	}

	_, err := d.client.DeleteItem(ctx, input)
	return mapConditionError(err)
}

// TransactWrite atomically applies all writes.
func (d *Dynamo) TransactWrite(ctx context.Context, writes []Write) error {
	items := make([]types.TransactWriteItem, 0, len(writes))
	for _, w := range writes {
		expr, values := conditionExpr(w.Cond)

		switch w.Kind {
		case WritePut:
			put := &types.Put{
				TableName: aws.String(d.config.TableName),
				Item:      w.Item,
			}
			if expr != "" {
				put.ConditionExpression = aws.String(expr)
				put.ExpressionAttributeValues = values
			}
			items = append(items, types.TransactWriteItem{Put: put})

		case WriteDelete:
			del := &types.Delete{
				TableName: aws.String(d.config.TableName),
				Key:       keyAttrs(w.Key),
			}
			if expr != "" {
				del.ConditionExpression = aws.String(expr)
				del.ExpressionAttributeValues = values
			}
			items = append(items, types.TransactWriteItem{Delete: del})

		case WriteCheck:
			if expr == "" {
				return fmt.Errorf("store: condition check at key %v has no condition", w.Key)
			}
			items = append(items, types.TransactWriteItem{
				ConditionCheck: &types.ConditionCheck{
					TableName:                 aws.String(d.config.TableName),
					Key:                       keyAttrs(w.Key),
					ConditionExpression:       aws.String(expr),
					ExpressionAttributeValues: values,
				},
			})
		}
	}

	_, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapTransactionError(err, len(writes))
}

// QueryPrefix returns the items in the pk partition whose sort key starts
// with skPrefix, in ascending sort-key order.
func (d *Dynamo) QueryPrefix(ctx context.Context, pk, skPrefix string, limit int32) ([]Item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.config.TableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: skPrefix},
		},
		ConsistentRead: aws.Bool(true),
	}

	// A bounded query is a single page; peeking the waitlist head uses limit 1.
	if limit > 0 {
		input.Limit = aws.Int32(limit)
		result, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		return toItems(result.Items), nil
	}

	var items []Item
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
		}
	}
	return items, nil
}

// QueryIndex returns the GSI1 items in the pk partition whose GSI1 sort key
// starts with skPrefix, in ascending order.
func (d *Dynamo) QueryIndex(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.config.TableName),
		IndexName:              aws.String(d.config.IndexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: skPrefix},
		},
	}

	var items []Item
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
		}
	}
	return items, nil
}

// ScanPrefix returns all items whose partition key starts with pkPrefix.
func (d *Dynamo) ScanPrefix(ctx context.Context, pkPrefix string) ([]Item, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(d.config.TableName),
		FilterExpression: aws.String("begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: pkPrefix},
		},
	}

	var items []Item
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
		}
	}
	return items, nil
}

// mapConditionError maps a DynamoDB conditional-check failure to
// ErrConditionFailed, passing other errors through.
func mapConditionError(err error) error {
	if err == nil {
		return nil
	}
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConditionFailed
	}
	return err
}

// mapTransactionError maps a DynamoDB transaction cancellation to a
// *TransactionCanceledError with index-aligned reasons.
func mapTransactionError(err error, writeCount int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if !errors.As(err, &txErr) {
		return err
	}

	reasons := make([]CancellationReason, writeCount)
	for i, reason := range txErr.CancellationReasons {
		if i >= writeCount {
			break
		}
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			reasons[i].ConditionFailed = true
		}
	}
	return &TransactionCanceledError{Reasons: reasons}
}

// toItems converts raw DynamoDB items.
func toItems(raw []map[string]types.AttributeValue) []Item {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Item(r))
	}
	return items
}
