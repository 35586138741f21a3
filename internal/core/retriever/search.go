package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"

	"policy-chat/config"
	"policy-chat/pkg/logger"
)

// SearchMilvus performs a vector similarity search and returns topK hits with metadata.
func SearchMilvus(ctx context.Context, query []float32, topK int, filters Filters) ([]Hit, error) {
	if topK <= 0 {
		topK = config.Cfg.Query.TopK
	}
	if len(query) == 0 {
		return []Hit{}, nil
	}
	// Bound search latency when the caller passes no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if collection == "" {
		collection = "chunks"
	}

	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %q not found", collection)
	}
	if err := cli.LoadCollection(ctx, collection, false); err != nil {
		return nil, err
	}

	metricType := milvusentity.MetricType(config.Cfg.Milvus.IndexHNSWConfig.MetricType)
	ef := 64
	searchParam, err := milvusentity.NewIndexHNSWSearchParam(ef)
	if err != nil {
		return nil, err
	}

	expr := buildExpr(filters)
	outputFields := []string{"id", "doc_id", "chunk_index", "page_start", "page_end", "chunk_type", "content"}
	vectors := []milvusentity.Vector{milvusentity.FloatVector(query)}

	start := time.Now()
	results, err := cli.Search(
		ctx,
		collection,
		nil, // partitions
		expr,
		outputFields,
		vectors,
		"embedding",
		metricType,
		topK,
		searchParam,
	)
	if err != nil {
		logger.Error(err, "%v: milvus search failed", config.ModuleRetriever)
		return nil, err
	}
	logger.WithFields(map[string]interface{}{
		"elapsed_ms": time.Since(start).Milliseconds(),
		"top_k":      topK,
	}).Info("milvus: search done")

	if len(results) == 0 {
		return []Hit{}, nil
	}
	it := results[0]

	hits := make([]Hit, 0, it.ResultCount)
	for i := 0; i < it.ResultCount; i++ {
		var h Hit
		h.ChunkID = it.IDs.(*milvusentity.ColumnInt64).Data()[i]
		h.Score = float32(it.Scores[i])

		for _, field := range it.Fields {
			switch col := field.(type) {
			case *milvusentity.ColumnInt64:
				if col.Name() == "doc_id" {
					h.DocID = col.Data()[i]
				}
			case *milvusentity.ColumnInt32:
				switch col.Name() {
				case "chunk_index":
					h.ChunkIndex = col.Data()[i]
				case "page_start":
					h.PageStart = col.Data()[i]
				case "page_end":
					h.PageEnd = col.Data()[i]
				}
			case *milvusentity.ColumnVarChar:
				switch col.Name() {
				case "chunk_type":
					h.ChunkType = col.Data()[i]
				case "content":
					h.Content = col.Data()[i]
				}
			}
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func buildExpr(f Filters) string {
	if len(f.DocIDs) == 0 {
		return ""
	}
	// doc_id in [1,2,3]
	var b strings.Builder
	b.WriteString("doc_id in [")
	for i, id := range f.DocIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	b.WriteByte(']')
	return b.String()
}
