package orders

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Per-record outcome statuses stored alongside each item.
const (
	StatusSuccess       = "success"
	StatusInvalidRecord = "invalid_record"
	StatusDynamoError   = "dynamo_error"
)

// Record is the normalized order item stored in the response table.
// (order_name, order_id) is the composite key; a re-sync of the same remote
// order overwrites the prior item. Nullable fields are pointers so DynamoDB
// gets an explicit NULL attribute, matching what consumers already read.
type Record struct {
	OrderName      string  `dynamodbav:"order_name" json:"order_name"` // PK
	OrderID        string  `dynamodbav:"order_id" json:"order_id"`     // SK
	CustomerID     *string `dynamodbav:"customer_id" json:"customer_id"`
	CustomerName   *string `dynamodbav:"customer_name" json:"customer_name"`
	AmountTotal    *Amount `dynamodbav:"amount_total" json:"amount_total"`
	State          *string `dynamodbav:"state" json:"state"`
	DateOrder      *string `dynamodbav:"date_order" json:"date_order"`
	ResponseStatus string  `dynamodbav:"response_status" json:"response_status"`
	LastUpdatedAt  string  `dynamodbav:"last_updated_at,omitempty" json:"last_updated_at,omitempty"`
}

// Amount is a decimal total that round-trips as a DynamoDB number attribute
// instead of a lossy float.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.String()}, nil
}

func (a *Amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return fmt.Errorf("amount_total: expected number attribute, got %T", av)
	}
	d, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("amount_total: %w", err)
	}
	a.Decimal = d
	return nil
}
