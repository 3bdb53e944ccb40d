package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory DynamoDB keyed by the composite
// order_name|order_id, with injectable per-key write failures.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	failKeys map[string]error
	putCalls int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items:    map[string]map[string]types.AttributeValue{},
		failKeys: map[string]error{},
	}
}

func compositeKey(item map[string]types.AttributeValue) (string, error) {
	name, ok := item["order_name"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("order_name missing or not a string")
	}
	id, ok := item["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("order_id missing or not a string")
	}
	return name.Value + "|" + id.Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	key, err := compositeKey(params.Item)
	if err != nil {
		return nil, err
	}
	// one-shot failure injection: the retry (e.g. the placeholder write for
	// the same key) goes through
	if failErr, ok := m.failKeys[key]; ok {
		delete(m.failKeys, key)
		return nil, failErr
	}
	m.items[key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) BatchWriteItem(ctx context.Context, params *dyn.BatchWriteItemInput, optFns ...func(*dyn.Options)) (*dyn.BatchWriteItemOutput, error) {
	return &dyn.BatchWriteItemOutput{}, nil
}
