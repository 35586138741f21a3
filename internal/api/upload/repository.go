package upload

import (
	"errors"

	"gorm.io/gorm"

	"policy-chat/internal/database/model"
)

// FindDocumentBySha256 returns the document with matching content hash, or
// nil when none exists.
func FindDocumentBySha256(db *gorm.DB, shaHex string) (*model.Document, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	var doc model.Document
	err := db.Where("sha256 = ?", shaHex).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func ListDocuments(db *gorm.DB) ([]model.Document, error) {
	var docs []model.Document
	if err := db.Order("id DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
