package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/pticket/helpdesk/internal/config"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

var allowedAttachmentExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".txt": {}, ".zip": {},
}

// AttachmentService stores ticket and reply attachments in object storage.
// The client may be nil when no endpoint is configured; every operation then
// fails with a clear error instead of panicking.
type AttachmentService struct {
	client *minio.Client
	bucket string
}

// NewAttachmentService constructs the service.
func NewAttachmentService(client *minio.Client, cfg config.StorageConfig) *AttachmentService {
	return &AttachmentService{client: client, bucket: cfg.Bucket}
}

// Enabled reports whether object storage is configured.
func (s *AttachmentService) Enabled() bool {
	return s.client != nil
}

// Upload streams a file into the bucket and returns the generated object key.
// The original filename only contributes its extension; the key itself is a
// UUID so uploads can never collide or traverse paths.
func (s *AttachmentService) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.client == nil {
		return "", apperrors.NewUnavailable("attachment storage is not configured")
	}
	if size <= 0 {
		return "", apperrors.NewValidationError("empty file", nil)
	}
	if size > maxAttachmentSize {
		return "", apperrors.NewValidationError("file exceeds the 10MB limit", nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedAttachmentExtensions[ext]; !ok {
		return "", apperrors.NewValidationError("file type not allowed", map[string]string{"extension": ext})
	}

	key := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", apperrors.NewInternalError("attachment upload failed", err)
	}
	return key, nil
}

// Download opens the stored object for streaming back to the client. The
// caller must close the returned reader.
func (s *AttachmentService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if s.client == nil {
		return nil, "", apperrors.NewUnavailable("attachment storage is not configured")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", apperrors.NewInternalError("attachment fetch failed", err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, "", apperrors.NewNotFound("attachment not found")
		}
		return nil, "", apperrors.NewInternalError("attachment fetch failed", err)
	}
	return obj, stat.ContentType, nil
}

// PresignedURL issues a short-lived direct download link.
func (s *AttachmentService) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", apperrors.NewUnavailable("attachment storage is not configured")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", apperrors.NewInternalError("presign failed", err)
	}
	return u.String(), nil
}

// Delete removes a stored object. Missing objects are not an error.
func (s *AttachmentService) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return apperrors.NewUnavailable("attachment storage is not configured")
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.NewInternalError("attachment delete failed", err)
	}
	return nil
}
