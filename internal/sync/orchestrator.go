// Package sync drives the end-to-end CRM pull: credentials, authenticate,
// fetch, normalize each record, persist each record, aggregate the outcome.
package sync

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudcrm/odoo-order-sync/internal/credentials"
	"github.com/cloudcrm/odoo-order-sync/internal/odoo"
	"github.com/cloudcrm/odoo-order-sync/internal/orders"
)

// Fetch shape: which entity, which fields, how ordered.
const (
	orderModel = "sale.order"
	orderSort  = "id desc"

	// DefaultFetchLimit is the result-count ceiling; no pagination follows.
	DefaultFetchLimit = 100
)

var orderFields = []string{"id", "name", "partner_id", "amount_total", "state", "date_order"}

// RecordSink is the persistence capability the orchestrator depends on.
type RecordSink interface {
	Put(ctx context.Context, rec orders.Record) error
	PutPlaceholder(ctx context.Context, orderName, orderID string) error
}

// Reporter publishes per-run counters. Implementations are best-effort; a
// reporting failure must never affect the run result.
type Reporter interface {
	ReportRun(ctx context.Context, synced, failed int, fatal bool)
}

// Orchestrator wires the collaborators for one deployment. It is stateless
// across runs apart from whatever its credential provider caches.
type Orchestrator struct {
	creds      credentials.Provider
	newClient  func(credentials.Bundle) odoo.Client
	sink       RecordSink
	reporter   Reporter
	log        *zap.Logger
	tableName  string
	fetchLimit int
}

// Deps groups the orchestrator's collaborators.
type Deps struct {
	Credentials credentials.Provider
	NewClient   func(credentials.Bundle) odoo.Client
	Sink        RecordSink
	Reporter    Reporter
	Logger      *zap.Logger
	TableName   string
	FetchLimit  int
}

// New builds an orchestrator. FetchLimit defaults to DefaultFetchLimit.
func New(deps Deps) *Orchestrator {
	limit := deps.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		creds:      deps.Credentials,
		newClient:  deps.NewClient,
		sink:       deps.Sink,
		reporter:   deps.Reporter,
		log:        log,
		tableName:  deps.TableName,
		fetchLimit: limit,
	}
}

// Run executes one sync. Configuration, authentication and fetch failures
// abort the whole run with a 500 and zero writes; anything that goes wrong
// with a single record is isolated to that record's stored status.
func (o *Orchestrator) Run(ctx context.Context, ev Event) Result {
	if ev.Test {
		return Result{StatusCode: http.StatusOK, Message: "Test OK"}
	}

	log := o.log.With(zap.String("run_id", uuid.NewString()))
	log.Info("sync started")

	if o.tableName == "" {
		return o.fatal(ctx, log, &credentials.ConfigError{Missing: []string{"ODOO_RESPONSE_TABLE"}})
	}

	bundle, err := o.creds.Credentials(ctx)
	if err != nil {
		return o.fatal(ctx, log, err)
	}

	client := o.newClient(bundle)
	if err := client.Authenticate(ctx); err != nil {
		return o.fatal(ctx, log, err)
	}
	log.Info("authenticated", zap.String("database", bundle.Database))

	limit := o.fetchLimit
	if ev.Limit > 0 {
		limit = ev.Limit
	}
	raws, err := client.SearchRead(ctx, orderModel, orderFields, limit, orderSort)
	if err != nil {
		return o.fatal(ctx, log, err)
	}
	log.Info("orders fetched", zap.Int("count", len(raws)))

	records := make([]orders.Record, 0, len(raws))
	failed := 0
	for _, raw := range raws {
		rec := orders.Flatten(raw)
		if rec.ResponseStatus != orders.StatusSuccess {
			failed++
		}

		if err := o.sink.Put(ctx, rec); err != nil {
			log.Error("record write failed",
				zap.String("order_name", rec.OrderName),
				zap.String("order_id", rec.OrderID),
				zap.Error(err))
			if rec.ResponseStatus == orders.StatusSuccess {
				failed++
			}
			rec = orders.Record{
				OrderName:      rec.OrderName,
				OrderID:        rec.OrderID,
				ResponseStatus: orders.StatusDynamoError,
			}
			if perr := o.sink.PutPlaceholder(ctx, rec.OrderName, rec.OrderID); perr != nil {
				log.Error("placeholder write failed",
					zap.String("order_name", rec.OrderName),
					zap.String("order_id", rec.OrderID),
					zap.Error(perr))
			}
		}
		records = append(records, rec)
	}

	if o.reporter != nil {
		o.reporter.ReportRun(ctx, len(records)-failed, failed, false)
	}
	log.Info("sync finished", zap.Int("records", len(records)), zap.Int("failed", failed))

	return Result{StatusCode: http.StatusOK, Records: records}
}

func (o *Orchestrator) fatal(ctx context.Context, log *zap.Logger, err error) Result {
	log.Error("sync aborted", zap.Error(err))
	if o.reporter != nil {
		o.reporter.ReportRun(ctx, 0, 0, true)
	}
	return Result{StatusCode: http.StatusInternalServerError, Error: err.Error()}
}
