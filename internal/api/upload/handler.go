package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v3"

	"policy-chat/config"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/apperror"
	"policy-chat/pkg/apperror/status"
	s3client "policy-chat/pkg/s3"
)

type uploadResponse struct {
	DocID  int64  `json:"doc_id"`
	Sha256 string `json:"sha256"`
	Status string `json:"status"`
}

// HandleUpload accepts a multipart PDF, stores it to S3 or local disk keyed
// by its content hash, and registers a document row in the uploaded state.
func HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	}
	if fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, "empty file")
	}
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != "" && ext != ".pdf" {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, "only PDF files are accepted")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, "cannot open file")
	}
	defer file.Close()

	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	hasher := sha256.New()
	tee := io.TeeReader(file, hasher)

	var storedPath, shaHex string
	if strings.TrimSpace(config.Cfg.S3.Bucket) != "" {
		storedPath, shaHex, err = storeToS3(context.Background(), tee, hasher)
	} else {
		storedPath, shaHex, err = storeToLocal(tee, hasher)
	}
	if err != nil {
		return apperror.WriteError(config.ModuleUpload, c, fiber.StatusInternalServerError,
			apperror.CodeString(status.UploadStoreFailed), err.Error())
	}

	// Re-upload of identical content reuses the existing document row.
	if existing, err := FindDocumentBySha256(db, shaHex); err == nil && existing != nil {
		return apperror.Success(config.ModuleUpload, c, apperror.SuccessMessage{
			Code:       status.OK,
			Message:    "file already uploaded",
			TrackingID: trackingID,
			Data:       uploadResponse{DocID: existing.ID, Sha256: shaHex, Status: existing.Status},
		})
	}

	original := fh.Filename
	now := time.Now()
	doc := model.Document{
		OriginalFilename: &original,
		FilePath:         &storedPath,
		Sha256:           &shaHex,
		Status:           "uploaded",
		UploadedAt:       &now,
	}
	if err := database.CreateEntity(context.Background(), &doc); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.SuccessMessage{
		Code:       status.OK,
		Message:    "file uploaded",
		TrackingID: trackingID,
		Data:       uploadResponse{DocID: doc.ID, Sha256: shaHex, Status: doc.Status},
	})
}

func storeToLocal(r io.Reader, hasher hash.Hash) (string, string, error) {
	baseDir := filepath.Join("storage", "documents")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create storage dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(baseDir, "upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		return "", "", fmt.Errorf("write file: %w", err)
	}

	shaHex := hex.EncodeToString(hasher.Sum(nil))
	finalPath := filepath.Join(baseDir, shaHex+".pdf")
	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("finalize file: %w", err)
	}
	return finalPath, shaHex, nil
}

func storeToS3(ctx context.Context, r io.Reader, hasher hash.Hash) (string, string, error) {
	client, err := s3client.GetClient()
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := config.Cfg.S3.Bucket
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		if _, crtErr := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); crtErr != nil {
			var owned *s3types.BucketAlreadyOwnedByYou
			if !errors.As(crtErr, &owned) {
				return "", "", fmt.Errorf("create bucket: %w", crtErr)
			}
		}
	}

	// PutObject needs a seekable body, so spool to a temp file while hashing.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", "", fmt.Errorf("stream copy: %w", err)
	}
	shaHex := hex.EncodeToString(hasher.Sum(nil))
	key := fmt.Sprintf("documents/%s.pdf", shaHex)

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("seek: %w", err)
	}
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        tmp,
		ContentType: aws.String("application/pdf"),
	}); err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), shaHex, nil
}
