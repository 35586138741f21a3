package ingest

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	ingestsvc "policy-chat/internal/services/ingest"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

type ingestResponse struct {
	DocID int64 `json:"doc_id"`
}

// HandleIngest kicks off the ingestion pipeline for a document and returns
// immediately; progress is visible through the document's status.
func HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "invalid docID")
	}

	q := c.Query("force")
	force := q == "1" || q == "true" || q == "yes"

	go ingestsvc.RunIngestion(docID, force)

	return apperror.Success(config.ModuleIngest, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "ingest started",
		TrackingID: trackingID,
		Data:       ingestResponse{DocID: docID},
	})
}
