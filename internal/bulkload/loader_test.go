package bulkload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrm/odoo-order-sync/internal/queue"
)

type mockBatchDynamo struct {
	batches [][]types.WriteRequest
	err     error
}

func (m *mockBatchDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return &dyn.PutItemOutput{}, nil
}

func (m *mockBatchDynamo) BatchWriteItem(ctx context.Context, params *dyn.BatchWriteItemInput, optFns ...func(*dyn.Options)) (*dyn.BatchWriteItemOutput, error) {
	for _, reqs := range params.RequestItems {
		m.batches = append(m.batches, reqs)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &dyn.BatchWriteItemOutput{}, nil
}

type mockS3 struct {
	body string
	err  error
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(m.body))}, nil
}

type mockSQS struct {
	messages []string
	reasons  []string
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.messages = append(m.messages, *params.MessageBody)
	if attr, ok := params.MessageAttributes["reason"]; ok {
		m.reasons = append(m.reasons, *attr.StringValue)
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestHandle_Warmup(t *testing.T) {
	l := New(&mockS3{}, &mockBatchDynamo{}, "employees", nil, nil)

	summary, err := l.Handle(context.Background(), Event{Warmup: true})
	require.NoError(t, err)
	assert.Equal(t, "warmup_ok", summary.Status)
}

func TestHandle_TestModeValidatesAndRejects(t *testing.T) {
	dynamo := &mockBatchDynamo{}
	sqsMock := &mockSQS{}
	l := New(&mockS3{}, dynamo, "employees", queue.NewPublisher(sqsMock, "https://sqs/q"), nil)

	summary, err := l.Handle(context.Background(), Event{
		Test: true,
		Rows: []map[string]string{
			{"emp_id": "1", "name": "Ada"},
			{"emp_id": "2", "name": "Grace"},
			{"emp_id": "", "name": "NoID"},
			{"emp_id": "abc", "name": "BadID"},
			{"emp_id": " 5 ", "name": "Spaced"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 2, summary.Failed)

	require.Len(t, dynamo.batches, 1)
	assert.Len(t, dynamo.batches[0], 3)

	require.Len(t, sqsMock.messages, 2)
	assert.Contains(t, sqsMock.reasons[0], "missing emp_id")
	assert.Contains(t, sqsMock.reasons[1], "must be numeric")
}

func TestHandle_BatchesOfTwentyFive(t *testing.T) {
	dynamo := &mockBatchDynamo{}
	l := New(&mockS3{}, dynamo, "employees", nil, nil)

	rows := make([]map[string]string, 0, 60)
	for i := 1; i <= 60; i++ {
		rows = append(rows, map[string]string{"emp_id": fmt.Sprint(i)})
	}

	summary, err := l.Handle(context.Background(), Event{Test: true, Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 60, summary.Inserted)

	require.Len(t, dynamo.batches, 3)
	assert.Len(t, dynamo.batches[0], 25)
	assert.Len(t, dynamo.batches[1], 25)
	assert.Len(t, dynamo.batches[2], 10)
}

func TestHandle_S3Trigger(t *testing.T) {
	csvBody := "\xEF\xBB\xBFemp_id,name,dept\n101,Ada,eng\n102,Grace,eng\n,,\n"
	dynamo := &mockBatchDynamo{}
	l := New(&mockS3{body: csvBody}, dynamo, "employees", nil, nil)

	ev := Event{
		Records: []events.S3EventRecord{{
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "uploads"},
				Object: events.S3Object{Key: "staff.csv"},
			},
		}},
	}

	summary, err := l.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted, "BOM stripped, empty row skipped")
	assert.Zero(t, summary.Failed)

	// emp_id stored as a number
	require.Len(t, dynamo.batches, 1)
	item := dynamo.batches[0][0].PutRequest.Item
	id, ok := item["emp_id"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "101", id.Value)
	name, ok := item["name"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "Ada", name.Value)
}

func TestHandle_NotAnS3Trigger(t *testing.T) {
	l := New(&mockS3{}, &mockBatchDynamo{}, "employees", nil, nil)

	_, err := l.Handle(context.Background(), Event{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid S3 trigger")
}

func TestNewRowReader_Errors(t *testing.T) {
	_, err := newRowReader(strings.NewReader(""))
	assert.ErrorIs(t, err, errEmptyFile)

	_, err = newRowReader(strings.NewReader("\xff\xfeemp_id\n1\n"))
	assert.ErrorIs(t, err, errInvalidEncoding)
}
