package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	key         string
	contentType string
	body        []byte
}

func (p *recordingProvider) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	p.key, p.contentType, p.body = key, contentType, data
	return "https://cdn.example.com/" + key, nil
}

func (p *recordingProvider) Delete(context.Context, string) error { return nil }

func (p *recordingProvider) GetURL(key string) string { return "https://cdn.example.com/" + key }

var pngFile = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func TestMediaService_Upload(t *testing.T) {
	provider := &recordingProvider{}
	service := NewMediaService(provider, 1024, testLogger(), validator.New())

	result, err := service.Upload(context.Background(), &MediaUploadRequest{
		Folder:   models.FolderImages,
		Filename: "Cat.PNG",
		Size:     int64(len(pngFile)),
	}, bytes.NewReader(pngFile), "author-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(provider.key, "images/"))
	assert.True(t, strings.HasSuffix(provider.key, ".png"))
	assert.Equal(t, "image/png", provider.contentType)
	assert.Equal(t, pngFile, provider.body)
	assert.Equal(t, "https://cdn.example.com/"+provider.key, result.URL)
}

func TestMediaService_UploadRejections(t *testing.T) {
	service := NewMediaService(&recordingProvider{}, 32, testLogger(), validator.New())

	tests := []struct {
		name  string
		req   *MediaUploadRequest
		body  []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown folder",
			req:  &MediaUploadRequest{Folder: "documents", Filename: "a.png", Size: 8},
			body: pngFile[:8],
			check: func(t *testing.T, err error) {
				assert.True(t, IsValidation(err))
			},
		},
		{
			name: "empty file",
			req:  &MediaUploadRequest{Folder: models.FolderImages, Filename: "a.png", Size: 0},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMediaEmpty)
			},
		},
		{
			name: "too large",
			req:  &MediaUploadRequest{Folder: models.FolderImages, Filename: "a.png", Size: 33},
			body: pngFile[:33],
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMediaTooLarge)
			},
		},
		{
			name: "image in audio folder",
			req:  &MediaUploadRequest{Folder: models.FolderAudio, Filename: "a.mp3", Size: 16},
			body: pngFile[:16],
			check: func(t *testing.T, err error) {
				assert.True(t, IsBusinessRule(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Upload(context.Background(), tt.req, bytes.NewReader(tt.body), "author-1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
