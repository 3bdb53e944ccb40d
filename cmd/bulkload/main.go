package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	awsclients "github.com/cloudcrm/odoo-order-sync/internal/aws"
	"github.com/cloudcrm/odoo-order-sync/internal/bulkload"
	"github.com/cloudcrm/odoo-order-sync/internal/logger"
	"github.com/cloudcrm/odoo-order-sync/internal/queue"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	var rejects *queue.Publisher
	if queueURL := os.Getenv("REJECT_QUEUE_URL"); queueURL != "" {
		rejects = queue.NewPublisher(clients.SQS, queueURL)
	}

	loader := bulkload.New(clients.S3, clients.DynamoDB, os.Getenv("DYNAMO_TABLE_NAME"), rejects, log)

	// if environment variable RUN_LOCAL is set to "true", process one event locally for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		raw := os.Getenv("LOCAL_EVENT")
		if raw == "" {
			raw = `{"warmup": true}`
		}
		var ev bulkload.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			log.Fatal("invalid LOCAL_EVENT", zap.Error(err))
		}
		summary, err := loader.Handle(context.Background(), ev)
		if err != nil {
			log.Fatal("local handler error", zap.Error(err))
		}
		out, _ := json.Marshal(summary)
		fmt.Println(string(out))
		return
	}

	lambda.Start(loader.Handle)
}
