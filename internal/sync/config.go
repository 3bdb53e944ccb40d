package sync

import (
	"os"
	"strconv"

	"go.uber.org/zap"

	awsclients "github.com/cloudcrm/odoo-order-sync/internal/aws"
	"github.com/cloudcrm/odoo-order-sync/internal/credentials"
	"github.com/cloudcrm/odoo-order-sync/internal/metrics"
	"github.com/cloudcrm/odoo-order-sync/internal/odoo"
	"github.com/cloudcrm/odoo-order-sync/internal/orders"
)

// FromEnv assembles an orchestrator from the Lambda environment. Credential
// source: Secrets Manager when ODOO_SECRET_ARN is set, environment variables
// otherwise. Missing configuration is not fatal here; Run surfaces it as a
// 500 before any I/O.
func FromEnv(clients *awsclients.AWSClients, log *zap.Logger) *Orchestrator {
	var provider credentials.Provider
	if arn := os.Getenv("ODOO_SECRET_ARN"); arn != "" {
		provider = credentials.NewSecretsProvider(clients.SecretsManager, arn)
	} else {
		provider = credentials.EnvProvider{}
	}

	mode := os.Getenv("ODOO_AUTH_MODE")
	tableName := os.Getenv("ODOO_RESPONSE_TABLE")

	limit := 0
	if raw := os.Getenv("SYNC_FETCH_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		} else {
			log.Warn("ignoring invalid SYNC_FETCH_LIMIT", zap.String("value", raw))
		}
	}

	var reporter Reporter
	if os.Getenv("METRICS_DISABLED") == "" {
		reporter = metrics.NewPublisher(clients.CloudWatch, log)
	}

	return New(Deps{
		Credentials: provider,
		NewClient: func(b credentials.Bundle) odoo.Client {
			return odoo.NewClient(mode, b)
		},
		Sink:       orders.NewStore(clients.DynamoDB, tableName),
		Reporter:   reporter,
		Logger:     log,
		TableName:  tableName,
		FetchLimit: limit,
	})
}
