package conversation

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	corequery "policy-chat/internal/core/query"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// HandleNewSession mints a conversation session ID for subsequent /ask calls.
func HandleNewSession(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	return apperror.Success(config.ModuleConversation, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "session created",
		TrackingID: trackingID,
		Data:       sessionResponse{SessionID: corequery.NewSession()},
	})
}

// HandleGetSession returns the persisted messages of one session, oldest
// first.
func HandleGetSession(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	sessionID := strings.TrimSpace(c.Params("sessionID"))
	if sessionID == "" {
		return apperror.BadRequest(config.ModuleConversation, c, status.MissingParams, "sessionID is required")
	}
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleConversation, c, err)
	}
	var msgs []model.Message
	if err := db.Where("session_id = ?", sessionID).Order("id ASC").Find(&msgs).Error; err != nil {
		return apperror.InternalError(config.ModuleConversation, c, err)
	}
	if len(msgs) == 0 {
		return apperror.NotFound(config.ModuleConversation, c, "session not found")
	}
	return apperror.Success(config.ModuleConversation, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "session messages",
		TrackingID: trackingID,
		Data:       msgs,
	})
}

// HandleDeleteSession drops a session's history, both in memory and in MySQL.
func HandleDeleteSession(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	sessionID := strings.TrimSpace(c.Params("sessionID"))
	if sessionID == "" {
		return apperror.BadRequest(config.ModuleConversation, c, status.MissingParams, "sessionID is required")
	}
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleConversation, c, err)
	}
	if err := db.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error; err != nil {
		return apperror.InternalError(config.ModuleConversation, c, err)
	}
	corequery.DropSession(sessionID)
	return apperror.Success(config.ModuleConversation, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "session deleted",
		TrackingID: trackingID,
		Data:       sessionResponse{SessionID: sessionID},
	})
}
