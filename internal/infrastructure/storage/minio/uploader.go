package minio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// contentTypes maps report extensions to their MIME types.
var contentTypes = map[string]string{
	".jsonl": "application/x-ndjson",
	".json":  "application/json",
	".csv":   "text/csv",
}

// UploadResult describes a stored report object.
type UploadResult struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
	URL    string
}

// ReportUploader stores batch reports under <prefix>/<run-id><ext>.
type ReportUploader struct {
	client *MinIOClient
	logger logging.Logger
}

func NewReportUploader(client *MinIOClient, log logging.Logger) *ReportUploader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportUploader{client: client, logger: log}
}

// ObjectKey returns the key a report for runID with extension ext lands on.
func (u *ReportUploader) ObjectKey(runID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(u.client.config.Prefix, runID+ext)
}

// Upload streams size bytes from r. Size -1 lets minio-go buffer the body.
func (u *ReportUploader) Upload(ctx context.Context, runID, ext string, r io.Reader, size int64) (*UploadResult, error) {
	if u.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}

	key := u.ObjectKey(runID, ext)
	contentType, ok := contentTypes[path.Ext(key)]
	if !ok {
		contentType = "application/octet-stream"
	}

	info, err := u.client.client.PutObject(ctx, u.client.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"run-id": runID},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload report").
			WithDetail(fmt.Sprintf("bucket=%s key=%s", u.client.config.Bucket, key))
	}

	res := &UploadResult{Bucket: info.Bucket, Key: info.Key, Size: info.Size, ETag: info.ETag}
	if res.Bucket == "" {
		res.Bucket = u.client.config.Bucket
	}
	if res.Key == "" {
		res.Key = key
	}

	if link, err := u.client.client.PresignedGetObject(ctx, res.Bucket, res.Key, u.client.config.PresignExpiry, nil); err == nil {
		res.URL = link.String()
	} else {
		u.logger.Warn("failed to presign report url", logging.String("key", key), logging.Err(err))
	}

	u.logger.Info("report uploaded",
		logging.String("bucket", res.Bucket),
		logging.String("key", res.Key),
		logging.Int64("size", res.Size),
	)
	return res, nil
}

// UploadFile uploads the file at p, taking its extension as the report's.
func (u *ReportUploader) UploadFile(ctx context.Context, runID, p string) (*UploadResult, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open report").WithDetail("path=" + p)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat report").WithDetail("path=" + p)
	}
	return u.Upload(ctx, runID, filepath.Ext(p), f, st.Size())
}

// Exists reports whether a report for runID with extension ext is stored.
func (u *ReportUploader) Exists(ctx context.Context, runID, ext string) (bool, error) {
	key := u.ObjectKey(runID, ext)
	_, err := u.client.client.StatObject(ctx, u.client.config.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat report").WithDetail("key=" + key)
}

// Delete removes a stored report.
func (u *ReportUploader) Delete(ctx context.Context, runID, ext string) error {
	key := u.ObjectKey(runID, ext)
	if err := u.client.client.RemoveObject(ctx, u.client.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete report").WithDetail("key=" + key)
	}
	return nil
}

//Personal.AI order the ending
