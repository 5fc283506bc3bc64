package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// StorageService stores inspection attachments in MinIO. Without a
// configured client it only produces object paths, which keeps local
// development and tests free of an object store dependency.
type StorageService struct {
	minioClient *minio.Client
	bucket      string
}

func NewStorageService(minioClient *minio.Client, bucket string) *StorageService {
	return &StorageService{minioClient: minioClient, bucket: bucket}
}

// Upload stores one file under kind/yyyy/mm/dd/ and returns the URL it
// is served from. The path maps back onto the files route, so stripping
// the /files/ prefix yields the object key for Download.
func (s *StorageService) Upload(ctx context.Context, kind, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s%s",
		kind, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return "", fmt.Errorf("upload %s: %w", kind, err)
		}
	}

	return "/files/" + objectName, nil
}

// Download streams a stored object back to the caller.
func (s *StorageService) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if s.minioClient == nil {
		return nil, fmt.Errorf("object storage not configured")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}
