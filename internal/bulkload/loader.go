// Package bulkload ingests tabular records from S3 objects into DynamoDB.
// This is the simple parse-and-write path; it shares nothing with the CRM
// sync beyond the target store kind.
package bulkload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/cloudcrm/odoo-order-sync/internal/aws"
	"github.com/cloudcrm/odoo-order-sync/internal/queue"
)

// DynamoDB caps BatchWriteItem at 25 requests.
const maxBatchSize = 25

// keyColumn is the required numeric partition key column in the CSV.
const keyColumn = "emp_id"

// Event is the bulk loader invocation input: a warmup ping, a test payload
// with inline rows, or an S3 put notification.
type Event struct {
	Warmup  bool                   `json:"warmup,omitempty"`
	Test    bool                   `json:"test,omitempty"`
	Rows    []map[string]string    `json:"rows,omitempty"`
	Records []events.S3EventRecord `json:"Records,omitempty"`
}

// Summary reports how a load went.
type Summary struct {
	Status   string `json:"status,omitempty"`
	Inserted int    `json:"inserted"`
	Failed   int    `json:"failed"`
}

// Loader reads a CSV object and writes its rows to DynamoDB in batches.
// Rows that fail validation are counted, and routed to the reject queue when
// one is configured.
type Loader struct {
	s3client  aws.S3API
	dynamo    aws.DynamoDBAPI
	tableName string
	rejects   *queue.Publisher
	log       *zap.Logger
}

// New builds a Loader. rejects may be nil.
func New(s3client aws.S3API, dynamo aws.DynamoDBAPI, tableName string, rejects *queue.Publisher, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		s3client:  s3client,
		dynamo:    dynamo,
		tableName: tableName,
		rejects:   rejects,
		log:       log,
	}
}

// Handle processes one invocation.
func (l *Loader) Handle(ctx context.Context, ev Event) (Summary, error) {
	if ev.Warmup {
		l.log.Info("warmup event, skipping csv processing")
		return Summary{Status: "warmup_ok"}, nil
	}
	if ev.Test {
		l.log.Info("test mode with inline rows", zap.Int("rows", len(ev.Rows)))
		return l.insertRows(ctx, ev.Rows)
	}

	if len(ev.Records) == 0 {
		return Summary{}, errors.New("event is not a valid S3 trigger")
	}
	bucket := ev.Records[0].S3.Bucket.Name
	key := ev.Records[0].S3.Object.Key

	l.log.Info("reading csv object", zap.String("bucket", bucket), zap.String("key", key))

	obj, err := l.s3client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	reader, err := newRowReader(obj.Body)
	if err != nil {
		return Summary{}, err
	}
	rows, err := reader.readAll()
	if err != nil {
		return Summary{}, err
	}

	return l.insertRows(ctx, rows)
}

func (l *Loader) insertRows(ctx context.Context, rows []map[string]string) (Summary, error) {
	var summary Summary
	var pending []types.WriteRequest

	for _, row := range rows {
		item, err := rowItem(row)
		if err != nil {
			l.log.Warn("rejecting row", zap.Error(err), zap.String(keyColumn, row[keyColumn]))
			l.reject(ctx, row, err.Error())
			summary.Failed++
			continue
		}
		pending = append(pending, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
		if len(pending) == maxBatchSize {
			summary.apply(l.flush(ctx, pending))
			pending = nil
		}
	}
	if len(pending) > 0 {
		summary.apply(l.flush(ctx, pending))
	}

	l.log.Info("insert completed",
		zap.Int("inserted", summary.Inserted),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// rowItem converts a CSV row into a DynamoDB item. emp_id must be present
// and numeric; everything else stores as a string attribute.
func rowItem(row map[string]string) (map[string]types.AttributeValue, error) {
	rawID := strings.TrimSpace(row[keyColumn])
	if rawID == "" {
		return nil, fmt.Errorf("missing %s", keyColumn)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s must be numeric, got %q", keyColumn, rawID)
	}

	attrs := make(map[string]any, len(row))
	for k, v := range row {
		attrs[k] = v
	}
	attrs[keyColumn] = id

	item, err := attributevalue.MarshalMap(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal row: %w", err)
	}
	return item, nil
}

// flush writes one batch and returns (inserted, failed). Unprocessed items
// are counted as failed; there is no retry at this layer.
func (l *Loader) flush(ctx context.Context, batch []types.WriteRequest) (int, int) {
	out, err := l.dynamo.BatchWriteItem(ctx, &dyn.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			l.tableName: batch,
		},
	})
	if err != nil {
		l.log.Error("batch write failed", zap.Int("size", len(batch)), zap.Error(err))
		return 0, len(batch)
	}

	unprocessed := len(out.UnprocessedItems[l.tableName])
	if unprocessed > 0 {
		l.log.Warn("batch left unprocessed items", zap.Int("count", unprocessed))
	}
	return len(batch) - unprocessed, unprocessed
}

func (l *Loader) reject(ctx context.Context, row map[string]string, reason string) {
	if l.rejects == nil {
		return
	}
	body, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := l.rejects.Send(ctx, string(body), map[string]string{"reason": reason}); err != nil {
		l.log.Warn("reject publication failed", zap.Error(err))
	}
}

func (s *Summary) apply(inserted, failed int) {
	s.Inserted += inserted
	s.Failed += failed
}
