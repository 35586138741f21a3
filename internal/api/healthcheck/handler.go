package healthcheck

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"

	"policy-chat/config"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/apperror"
)

func ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func DatabaseHealthCheck(c fiber.Ctx) error {
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}

	var docs, chunks int64
	_ = db.Model(&model.Document{}).Count(&docs).Error
	_ = db.Model(&model.Chunk{}).Count(&chunks).Error
	return c.JSON(fiber.Map{
		"status":    "ok",
		"documents": docs,
		"chunks":    chunks,
	})
}

func MilvusHealthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	cancel()
	if err != nil {
		return apperror.InternalError(config.ModuleMilvus, c, err)
	}
	cli.Close()
	return c.SendString("ok")
}
