package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/storage"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

var folderMediaPrefix = map[models.MediaFolder]string{
	models.FolderImages: "image/",
	models.FolderAudio:  "audio/",
	models.FolderVideo:  "video/",
}

type mediaService struct {
	provider  storage.Provider
	maxBytes  int64
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewMediaService(provider storage.Provider, maxBytes int64, logger *slog.Logger, validator *validator.Validator) MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		provider:  provider,
		maxBytes:  maxBytes,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "media", Component: "service"}),
		validator: validator,
	}
}

// Upload sniffs the file type, checks it against the folder and stores the file under
// a fresh object key.
func (s *mediaService) Upload(ctx context.Context, req *MediaUploadRequest, reader io.Reader, actorID string) (result *models.MediaUpload, err error) {
	op := s.opLogger.WithOperation(ctx, "upload_media", actorID)
	defer func() { op.LogResult(req.Filename, "media", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Size == 0 {
		return nil, ErrMediaEmpty
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return nil, ErrMediaTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrMediaEmpty
	}

	detected := mimetype.Detect(head)
	contentType := detected.String()
	if !strings.HasPrefix(contentType, folderMediaPrefix[req.Folder]) {
		return nil, NewBusinessRuleError("media_type", ErrMediaUnsupportedType.Error(), map[string]interface{}{
			"folder":       req.Folder,
			"content_type": contentType,
		})
	}

	key := storage.ObjectKey(req.Folder, req.Filename)
	url, err := s.provider.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), reader), req.Size, contentType)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Media uploaded", "key", key, "content_type", contentType, "size", req.Size)
	return &models.MediaUpload{URL: url}, nil
}
