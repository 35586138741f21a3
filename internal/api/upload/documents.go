package upload

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

// HandleListDocuments returns all uploaded documents with their ingestion
// status.
func HandleListDocuments(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	docs, err := ListDocuments(db)
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	return apperror.Success(config.ModuleUpload, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "documents",
		TrackingID: trackingID,
		Data:       docs,
	})
}

// HandleGetDocument returns one document by ID.
func HandleGetDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	docID, err := strconv.ParseInt(c.Params("docID"), 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "invalid docID")
	}
	doc, err := database.GetEntityByID[model.Document](context.Background(), docID)
	if err != nil {
		return apperror.NotFound(config.ModuleUpload, c, "document not found")
	}
	return apperror.Success(config.ModuleUpload, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "document",
		TrackingID: trackingID,
		Data:       doc,
	})
}

// HandleDeleteDocument removes a document and its chunk rows. Vectors for a
// deleted document are left in Milvus; re-ingesting under the same document
// ID overwrites them because chunk IDs are derived from the document ID.
func HandleDeleteDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	docID, err := strconv.ParseInt(c.Params("docID"), 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "invalid docID")
	}
	ctx := context.Background()
	if _, err := database.GetEntityByID[model.Document](ctx, docID); err != nil {
		return apperror.NotFound(config.ModuleUpload, c, "document not found")
	}
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	if err := db.WithContext(ctx).Where("document_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	if err := database.DeleteEntityByID[model.Document](ctx, docID); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	return apperror.Success(config.ModuleUpload, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "document deleted",
		TrackingID: trackingID,
		Data:       fiber.Map{"doc_id": docID},
	})
}
