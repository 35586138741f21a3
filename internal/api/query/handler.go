package query

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	corequery "policy-chat/internal/core/query"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

// HandleAsk answers a question against the ingested documents.
func HandleAsk(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req corequery.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleQuery, c, status.InvalidRequestBody, err.Error())
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return apperror.BadRequest(config.ModuleQuery, c, status.MissingParams, "question is empty")
	}

	resp, err := corequery.Run(context.Background(), req)
	if err != nil {
		return apperror.WriteError(config.ModuleQuery, c, fiber.StatusInternalServerError,
			apperror.CodeString(status.AnswerFailed), err.Error())
	}

	return apperror.Success(config.ModuleQuery, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "query ok",
		TrackingID: trackingID,
		Data:       resp,
	})
}
