package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	awsclients "github.com/cloudcrm/odoo-order-sync/internal/aws"
	"github.com/cloudcrm/odoo-order-sync/internal/logger"
	"github.com/cloudcrm/odoo-order-sync/internal/sync"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	orch := sync.FromEnv(clients, log)

	// if environment variable RUN_LOCAL is set to "true", run one sync locally for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		var ev sync.Event
		if raw := os.Getenv("LOCAL_EVENT"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				log.Fatal("invalid LOCAL_EVENT", zap.Error(err))
			}
		}
		res := orch.Run(context.Background(), ev)
		out, _ := json.Marshal(res)
		fmt.Println(string(out))
		return
	}

	lambda.Start(func(ctx context.Context, ev sync.Event) (sync.Result, error) {
		// every failure path is folded into the result; the handler never errors
		return orch.Run(ctx, ev), nil
	})
}
