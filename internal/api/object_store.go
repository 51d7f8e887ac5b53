package api

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"cvbuilder/internal/storage"
)

// ObjectStore 是处理器使用的对象存储能力，生产环境由 *storage.Client 实现。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	DeleteObject(ctx context.Context, objectKey string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

var _ ObjectStore = (*storage.Client)(nil)
