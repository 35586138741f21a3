package ingest

import (
	"context"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"

	"policy-chat/config"
	"policy-chat/internal/core/segment"
	"policy-chat/pkg/logger"
)

const (
	milvusVectorDim = 1536
	// milvusContentMax caps the stored chunk text; anything longer lives only
	// in MySQL.
	milvusContentMax = 8192
)

// UpsertVectors ensures the chunks collection exists and inserts one row per
// chunk. Primary keys are derived from docID and chunk index so re-ingestion
// overwrites rather than duplicates.
func UpsertVectors(ctx context.Context, vectors [][]float32, docID int64, chunks []segment.Chunk) ([]int64, string, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, "", err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if collection == "" {
		collection = "chunks"
	}
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		if err := createChunksCollection(ctx, cli, collection); err != nil {
			return nil, "", err
		}
	}

	ids := make([]int64, len(chunks))
	docIDs := make([]int64, len(chunks))
	chunkIdxs := make([]int32, len(chunks))
	pageStarts := make([]int32, len(chunks))
	pageEnds := make([]int32, len(chunks))
	chunkTypes := make([]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		// Deterministic primary keys from docID and chunk index.
		ids[i] = (docID << 20) + int64(ch.ChunkIndex)
		docIDs[i] = docID
		chunkIdxs[i] = int32(ch.ChunkIndex)
		pageStarts[i] = int32(ch.PageStart)
		pageEnds[i] = int32(ch.PageEnd)
		chunkTypes[i] = string(ch.Type)
		content := ch.Text
		if len(content) > milvusContentMax {
			content = content[:milvusContentMax]
		}
		contents[i] = content
	}

	cols := []milvusentity.Column{
		milvusentity.NewColumnInt64("id", ids),
		milvusentity.NewColumnInt64("doc_id", docIDs),
		milvusentity.NewColumnInt32("chunk_index", chunkIdxs),
		milvusentity.NewColumnInt32("page_start", pageStarts),
		milvusentity.NewColumnInt32("page_end", pageEnds),
		milvusentity.NewColumnVarChar("chunk_type", chunkTypes),
		milvusentity.NewColumnVarChar("content", contents),
		milvusentity.NewColumnFloatVector("embedding", milvusVectorDim, vectors),
	}
	if _, err := cli.Insert(ctx, collection, "", cols...); err != nil {
		return nil, "", err
	}
	logger.WithFields(map[string]interface{}{
		"collection": collection,
		"doc_id":     docID,
		"rows":       len(chunks),
	}).Info("milvus: vectors inserted")
	return ids, collection, nil
}

func createChunksCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	schema := milvusentity.NewSchema().WithName(collection).WithDescription("document chunks")
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("doc_id").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("page_start").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("page_end").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("chunk_type").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(32))
	schema.WithField(milvusentity.NewField().WithName("content").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(milvusContentMax))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(milvusVectorDim))

	if err := cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	hnsw := config.Cfg.Milvus.IndexHNSWConfig
	idx, err := milvusentity.NewIndexHNSW(milvusentity.MetricType(hnsw.MetricType), hnsw.M, hnsw.EfConstruction)
	if err != nil {
		return err
	}
	return cli.CreateIndex(ctx, collection, "embedding", idx, false)
}
