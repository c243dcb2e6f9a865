package storage

import (
	"context"
	"fmt"
	"strings"

	"imagetag/internal/config"
)

const (
	// TypeLocal stores files on the local filesystem.
	TypeLocal = "local"
	// TypeS3 stores files on Amazon S3 or a compatible backend.
	TypeS3 = "s3"
	// TypeOSS stores files on Aliyun OSS.
	TypeOSS = "oss"
	// TypeCOS stores files on Tencent COS.
	TypeCOS = "cos"
	// TypeR2 stores files on Cloudflare R2.
	TypeR2 = "r2"
)

// Storage persists uploaded image bytes under a caller-chosen object name
// and returns the key used to build the image's public URL. The name embeds
// the image's database id, so every insert writes a fresh object.
type Storage interface {
	Save(ctx context.Context, data []byte, name string) (string, error)
}

// LocalBaseDirProvider is implemented by backends whose files can be served
// directly over HTTP from a local directory.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// ImageObjectName derives the object name for an uploaded image from its
// assigned id.
func ImageObjectName(imageID uint, ext string) string {
	return fmt.Sprintf("%d.%s", imageID, normalizeExtension(ext))
}

// NewStorage instantiates the configured storage backend.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
