package retriever

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	"policy-chat/internal/core/retriever"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
)

type searchResponse struct {
	Hits []retriever.Hit `json:"hits"`
}

// HandleSearch is a debug endpoint exposing raw vector search hits without
// the answering layer.
func HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleRetriever, c, status.MissingParams, "q is required")
	}
	topK := config.Cfg.Query.TopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		if v, err := strconv.Atoi(topKStr); err == nil && v > 0 && v <= 64 {
			topK = v
		}
	}
	var docIDs []int64
	if ids := strings.TrimSpace(c.Query("doc_ids")); ids != "" {
		for _, p := range strings.Split(ids, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if id, err := strconv.ParseInt(p, 10, 64); err == nil {
				docIDs = append(docIDs, id)
			}
		}
	}

	embedCtx, cancelEmbed := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, q)
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, err)
	}
	searchCtx, cancelSearch := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelSearch()
	hits, err := retriever.SearchMilvus(searchCtx, vec, topK, retriever.Filters{DocIDs: docIDs})
	if err != nil {
		return apperror.WriteError(config.ModuleRetriever, c, fiber.StatusInternalServerError,
			apperror.CodeString(status.SearchFailed), err.Error())
	}

	return apperror.Success(config.ModuleRetriever, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       searchResponse{Hits: hits},
	})
}
