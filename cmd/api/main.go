package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"

	"policy-chat/config"
	"policy-chat/internal/api/conversation"
	"policy-chat/internal/api/healthcheck"
	"policy-chat/internal/api/ingest"
	"policy-chat/internal/api/metrics"
	"policy-chat/internal/api/query"
	"policy-chat/internal/api/retriever"
	"policy-chat/internal/api/upload"
	"policy-chat/internal/middleware"
	"policy-chat/pkg/logger"
)

func main() {
	if err := config.Init("config.yaml"); err != nil {
		logger.Fatal(err, "%v: load config failed", config.ModuleServer)
	}
	_ = logger.SetLevel(string(config.Cfg.LogLevel))

	app := fiber.New(fiber.Config{
		AppName:     config.Cfg.Server.AppName,
		BodyLimit:   config.Cfg.Server.BodyLimit,
		Concurrency: config.Cfg.Server.Concurrency,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.Cfg.Cors.AllowOrigins,
		AllowMethods: config.Cfg.Cors.AllowMethods,
		AllowHeaders: config.Cfg.Cors.AllowHeaders,
	}))
	middleware.Setup(app, config.Cfg.Server.Concurrency)

	probeMilvus()

	healthcheck.RegisterRoutes(app)
	upload.RegisterRoutes(app)
	ingest.RegisterRoutes(app)
	query.RegisterRoutes(app)
	retriever.RegisterRoutes(app)
	conversation.RegisterRoutes(app)
	metrics.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	logger.Info("%v: listening on %s", config.ModuleServer, addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal(err, "%v: server error", config.ModuleServer)
	}
}

// probeMilvus checks vector store connectivity on startup. Failure is logged,
// not fatal; ingestion and search report their own errors.
func probeMilvus() {
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
		cancel()
		if err == nil {
			cli.Close()
			logger.Info("%v: milvus reachable at %s", config.ModuleMilvus, config.Cfg.Milvus.Address)
			return
		}
		logger.Error(err, "%v: milvus connect attempt %d failed", config.ModuleMilvus, attempt)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
}
