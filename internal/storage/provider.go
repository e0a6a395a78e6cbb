package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/config"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/google/uuid"
)

// Provider stores uploaded media and returns the public URL of each object.
type Provider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// NewProvider creates the provider selected by cfg.Provider.
func NewProvider(cfg *config.StorageConfig, logger *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "minio":
		logger.Info("Using MinIO media storage", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		return NewMinioProvider(cfg)
	case "local", "":
		logger.Info("Using local media storage", "dir", cfg.LocalDir)
		return NewLocalProvider(cfg.LocalDir, cfg.LocalBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// ObjectKey builds a unique object key inside folder that keeps the file extension.
func ObjectKey(folder models.MediaFolder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return string(folder) + "/" + uuid.NewString() + ext
}
