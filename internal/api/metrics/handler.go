package metrics

import (
	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	corequery "policy-chat/internal/core/query"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

type metricsResponse struct {
	Query           corequery.Stats `json:"query"`
	LastReadyDocID  *int64          `json:"last_ready_doc_id"`
	LastReadyDocSHA *string         `json:"last_ready_doc_sha256"`
}

// HandleMetrics reports query counts, token spend, latency percentiles and
// the most recently ingested document.
func HandleMetrics(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	resp := metricsResponse{Query: corequery.Snapshot()}
	if db, err := database.GetDB(); err == nil {
		var doc model.Document
		if err := db.Where("status = ?", "ready").Order("id DESC").First(&doc).Error; err == nil {
			resp.LastReadyDocID = &doc.ID
			resp.LastReadyDocSHA = doc.Sha256
		}
	}

	return apperror.Success(config.ModuleMetrics, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "metrics",
		TrackingID: trackingID,
		Data:       resp,
	})
}
