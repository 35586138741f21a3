package model

import "time"

// Document is an uploaded PDF tracked through the ingestion lifecycle:
// uploaded -> processing -> ready | failed.
type Document struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OriginalFilename *string    `gorm:"column:original_filename" json:"original_filename"`
	FilePath         *string    `gorm:"column:file_path" json:"file_path"`
	Sha256           *string    `gorm:"column:sha256;size:64" json:"sha256"`
	Status           string     `gorm:"column:status;size:32" json:"status"`
	PageCount        *int32     `gorm:"column:page_count" json:"page_count"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (Document) TableName() string { return "documents" }

// Chunk is one durable segment emitted by the segmentation engine, keyed
// into Milvus by MilvusID.
type Chunk struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID       int64      `gorm:"column:document_id;index" json:"document_id"`
	ChunkIndex       int32      `gorm:"column:chunk_index" json:"chunk_index"`
	PageStart        int32      `gorm:"column:page_start" json:"page_start"`
	PageEnd          int32      `gorm:"column:page_end" json:"page_end"`
	ChunkType        string     `gorm:"column:chunk_type;size:32" json:"chunk_type"`
	Content          string     `gorm:"column:content;type:mediumtext" json:"content"`
	ContentPreview   *string    `gorm:"column:content_preview;size:512" json:"content_preview"`
	TokenCount       *int32     `gorm:"column:token_count" json:"token_count"`
	ContentHash      string     `gorm:"column:content_hash;size:64" json:"content_hash"`
	MilvusCollection string     `gorm:"column:milvus_collection;size:128" json:"milvus_collection"`
	MilvusID         int64      `gorm:"column:milvus_id" json:"milvus_id"`
	CreatedAt        *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Chunk) TableName() string { return "chunks" }

// Message is one turn of a conversation session. Role is user, assistant
// or context (a retrieved snippet attached to the exchange).
type Message struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID  string     `gorm:"column:session_id;size:64;index" json:"session_id"`
	Role       string     `gorm:"column:role;size:16" json:"role"`
	Content    string     `gorm:"column:content;type:mediumtext" json:"content"`
	DocumentID *int64     `gorm:"column:document_id" json:"document_id"`
	CreatedAt  *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
