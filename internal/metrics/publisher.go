// Package metrics publishes per-run sync counters to CloudWatch.
package metrics

import (
	"context"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/cloudcrm/odoo-order-sync/internal/aws"
)

const namespace = "OdooOrderSync"

// Publisher emits run counters. Publication is best-effort: a CloudWatch
// failure is logged and swallowed so it can never change a run's outcome.
type Publisher struct {
	client  aws.CloudWatchAPI
	log     *zap.Logger
	nowFunc func() time.Time
}

// NewPublisher returns a Publisher bound to the sync namespace.
func NewPublisher(client aws.CloudWatchAPI, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		client:  client,
		log:     log,
		nowFunc: time.Now,
	}
}

// ReportRun publishes RecordsSynced, RecordsFailed and RunFatal for one run.
func (p *Publisher) ReportRun(ctx context.Context, synced, failed int, fatal bool) {
	now := p.nowFunc()

	fatalValue := 0.0
	if fatal {
		fatalValue = 1.0
	}

	datums := []cwtypes.MetricDatum{
		datum("RecordsSynced", float64(synced), now),
		datum("RecordsFailed", float64(failed), now),
		datum("RunFatal", fatalValue, now),
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(namespace),
		MetricData: datums,
	})
	if err != nil {
		p.log.Warn("metric publication failed", zap.Error(err))
	}
}

func datum(name string, value float64, at time.Time) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: sdkaws.String(name),
		Value:      sdkaws.Float64(value),
		Timestamp:  sdkaws.Time(at),
		Unit:       cwtypes.StandardUnitCount,
	}
}
