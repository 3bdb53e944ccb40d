package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awsclients "github.com/cloudcrm/odoo-order-sync/internal/aws"
	"github.com/cloudcrm/odoo-order-sync/internal/logger"
	"github.com/cloudcrm/odoo-order-sync/internal/sync"
	"github.com/cloudcrm/odoo-order-sync/internal/validation"
)

func setupRouter(orch *sync.Orchestrator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v := validation.New()

	r.POST("/sync", func(c *gin.Context) {
		var req validation.SyncRequest
		if c.Request.ContentLength > 0 {
			if err := validation.BindAndValidate(c, &req, v); err != nil {
				// BindAndValidate already wrote a 400
				return
			}
		}

		res := orch.Run(c.Request.Context(), sync.Event{
			Test:  req.Test,
			Limit: req.Limit,
		})
		c.JSON(res.StatusCode, res)
	})

	return r
}

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	r := setupRouter(sync.FromEnv(clients, log))

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			log.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
