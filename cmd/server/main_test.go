package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/client"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityRepository_APICloseReleasesTokenQueue(t *testing.T) {
	cfg := &config.Config{
		Persistence: config.PersistenceConfig{Backend: "api", APIBaseURL: "http://127.0.0.1:1/api"},
		Auth:        config.AuthConfig{AccessToken: "access", RefreshToken: "refresh"},
	}

	repo, closeRepo, err := newActivityRepository(cfg, nil, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, closeRepo)

	closeRepo()
	closeRepo()

	_, err = repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, client.ErrQueueClosed)
}

func TestNewActivityRepository_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Persistence: config.PersistenceConfig{Backend: "sqlite"}}

	repo, closeRepo, err := newActivityRepository(cfg, nil, slog.Default())
	assert.Error(t, err)
	assert.Nil(t, repo)
	assert.Nil(t, closeRepo)
}
