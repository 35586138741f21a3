package ingest

import (
	"context"
	"errors"
	"time"

	"policy-chat/config"
	coreingest "policy-chat/internal/core/ingest"
	"policy-chat/internal/core/segment"
	"policy-chat/pkg/logger"
)

// RunIngestion orchestrates the pipeline for one document: fetch, extract,
// segment, embed, index, persist. Runs to completion or marks the document
// failed; callers fire it in a goroutine.
func RunIngestion(docID int64, force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	doc, err := GetDocumentByID(ctx, docID)
	if err != nil {
		logger.Error(err, "%v: get document failed", config.ModuleIngest)
		return
	}
	if doc.FilePath == nil {
		logger.Error(errors.New("no file path"), "%v: document %d has no stored file", config.ModuleIngest, docID)
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":    docID,
		"file_path": *doc.FilePath,
	}).Info("ingest: start")

	exists, err := HasChunks(ctx, docID)
	if err != nil {
		logger.Error(err, "%v: check chunks failed", config.ModuleIngest)
		return
	}
	if exists && !force {
		logger.Info("%v: chunks already exist for doc %d, skipping", config.ModuleIngest, docID)
		return
	}
	if exists && force {
		if err := DeleteChunksByDocID(ctx, docID); err != nil {
			logger.Error(err, "%v: cleanup chunks failed", config.ModuleIngest)
			return
		}
		// Milvus rows are overwritten by their deterministic IDs on re-insert.
	}

	_ = UpdateDocumentStatus(ctx, docID, "processing")

	tmpPath, cleanup, err := coreingest.FetchToLocalTemp(ctx, *doc.FilePath)
	if err != nil {
		logger.Error(err, "%v: fetch file failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}
	defer cleanup()

	pages, err := coreingest.ExtractPDFTextPages(tmpPath)
	if err != nil {
		logger.Error(err, "%v: extract text failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  len(pages),
	}).Info("ingest: extracted pages")

	tok, err := segment.NewTokenizer()
	if err != nil {
		logger.Error(err, "%v: tokenizer init failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}
	opts := segment.Options{
		TargetTokens:   config.Cfg.Segment.TargetTokens,
		Overlap:        config.Cfg.Segment.Overlap,
		MinChunkTokens: config.Cfg.Segment.MinChunkTokens,
		StitchPages:    config.Cfg.Segment.StitchPages,
	}
	chunks := segment.NewSegmenter(tok).ChunkPages(pages, opts)
	logger.WithFields(map[string]interface{}{
		"doc_id":        docID,
		"chunks":        len(chunks),
		"target_tokens": opts.TargetTokens,
		"overlap":       opts.Overlap,
	}).Info("ingest: chunks built")
	if len(chunks) == 0 {
		logger.Error(errors.New("no chunks"), "%v: segmentation produced nothing", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}

	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		inputs = append(inputs, ch.Text)
	}
	vectors, err := coreingest.EmbedTexts(ctx, inputs)
	if err != nil {
		logger.Error(err, "%v: embedding failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}
	if len(vectors) != len(chunks) {
		logger.Error(errors.New("mismatch"), "%v: embedding count mismatch", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}

	milvusIDs, collection, err := coreingest.UpsertVectors(ctx, vectors, docID, chunks)
	if err != nil {
		logger.Error(err, "%v: milvus upsert failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}

	if err := FinalizeIngestion(ctx, docID, tok, chunks, milvusIDs, collection, int32(len(pages))); err != nil {
		logger.Error(err, "%v: db insert chunks failed", config.ModuleIngest)
		_ = UpdateDocumentStatus(ctx, docID, "failed")
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"chunks": len(chunks),
	}).Info("ingest: done")
}
