package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"policy-chat/internal/core/segment"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
)

func GetDocumentByID(ctx context.Context, docID int64) (*model.Document, error) {
	return database.GetEntityByID[model.Document](ctx, docID)
}

func UpdateDocumentStatus(ctx context.Context, docID int64, status string) error {
	return database.UpdateEntityByID[model.Document](ctx, docID, map[string]interface{}{"status": status})
}

func HasChunks(ctx context.Context, docID int64) (bool, error) {
	db, err := database.GetDB()
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func DeleteChunksByDocID(ctx context.Context, docID int64) error {
	db, err := database.GetDB()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("document_id = ?", docID).Delete(&model.Chunk{}).Error
}

// FinalizeIngestion persists the chunk rows and flips the document to ready
// with its page count in one transaction, so a crash mid-write cannot leave
// a ready document without chunks.
func FinalizeIngestion(ctx context.Context, docID int64, tok segment.Tokenizer, chunks []segment.Chunk, milvusIDs []int64, collection string, pageCount int32) error {
	records := buildChunkRecords(docID, tok, chunks, milvusIDs, collection)
	return database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&records).Error; err != nil {
			return err
		}
		return tx.Model(&model.Document{}).Where("id = ?", docID).
			Updates(map[string]interface{}{"page_count": pageCount, "status": "ready"}).Error
	})
}

func buildChunkRecords(docID int64, tok segment.Tokenizer, chunks []segment.Chunk, milvusIDs []int64, collection string) []model.Chunk {
	records := make([]model.Chunk, 0, len(chunks))
	for i, ch := range chunks {
		preview := buildContentPreview(ch.Text, 512)
		h := sha256.Sum256([]byte(ch.Text))
		hash := hex.EncodeToString(h[:])
		tokens := int32(tok.Count(ch.Text))
		var milvusID int64
		if i < len(milvusIDs) {
			milvusID = milvusIDs[i]
		}
		records = append(records, model.Chunk{
			DocumentID:       docID,
			ChunkIndex:       int32(ch.ChunkIndex),
			PageStart:        int32(ch.PageStart),
			PageEnd:          int32(ch.PageEnd),
			ChunkType:        string(ch.Type),
			Content:          ch.Text,
			ContentPreview:   &preview,
			TokenCount:       &tokens,
			ContentHash:      hash,
			MilvusCollection: collection,
			MilvusID:         milvusID,
		})
	}
	return records
}

// buildContentPreview keeps printable runes and truncates by rune count so
// multi-byte sequences never split.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' {
			continue
		}
		if r != '\n' && r != '\t' && r != '\r' && !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
