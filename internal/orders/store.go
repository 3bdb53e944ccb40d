package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/cloudcrm/odoo-order-sync/internal/aws"
)

// Store encapsulates writes to the response table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore returns a Store bound to one table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Put upserts one record under its (order_name, order_id) composite key.
// There is no read-before-write: a key collision overwrites the prior item.
// The stored item is stamped with the write time; the caller's copy is not.
func (s *Store) Put(ctx context.Context, rec Record) error {
	rec.LastUpdatedAt = s.nowFunc().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("put item %s/%s: %s: %w", rec.OrderName, rec.OrderID, apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("put item %s/%s: %w", rec.OrderName, rec.OrderID, err)
	}
	return nil
}

// PutPlaceholder writes the degraded dynamo_error item for a record whose
// full write failed, preserving traceability of the order.
func (s *Store) PutPlaceholder(ctx context.Context, orderName, orderID string) error {
	item := map[string]types.AttributeValue{
		"order_name":      &types.AttributeValueMemberS{Value: orderName},
		"order_id":        &types.AttributeValueMemberS{Value: orderID},
		"response_status": &types.AttributeValueMemberS{Value: StatusDynamoError},
		"last_updated_at": &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339)},
	}

	_, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put placeholder %s/%s: %w", orderName, orderID, err)
	}
	return nil
}
