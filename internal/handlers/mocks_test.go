package handlers

import (
	"context"
	"io"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/stretchr/testify/mock"
)

type mockActivityService struct {
	mock.Mock
}

func (m *mockActivityService) Create(ctx context.Context, req *services.CreateActivityRequest, actorID string) (*services.ActivityResponse, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActivityResponse), args.Error(1)
}

func (m *mockActivityService) GetByID(ctx context.Context, id uint) (*services.ActivityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActivityResponse), args.Error(1)
}

func (m *mockActivityService) Update(ctx context.Context, id uint, req *services.UpdateActivityRequest, actorID string) (*services.ActivityResponse, error) {
	args := m.Called(ctx, id, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActivityResponse), args.Error(1)
}

func (m *mockActivityService) Delete(ctx context.Context, id uint, actorID string) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *mockActivityService) List(ctx context.Context, filters repositories.ActivityFilters) (*services.ActivityListResponse, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActivityListResponse), args.Error(1)
}

func (m *mockActivityService) ListByLesson(ctx context.Context, lessonID uint) ([]*services.ActivityResponse, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.ActivityResponse), args.Error(1)
}

func (m *mockActivityService) Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder, actorID string) error {
	return m.Called(ctx, lessonID, order, actorID).Error(0)
}

type mockAuthoringService struct {
	mock.Mock
}

func (m *mockAuthoringService) draft(args mock.Arguments) (*services.DraftResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DraftResponse), args.Error(1)
}

func (m *mockAuthoringService) snapshot(args mock.Arguments) (*preview.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preview.Snapshot), args.Error(1)
}

func (m *mockAuthoringService) OpenDraft(ctx context.Context, req *services.OpenDraftRequest, authorID string) (*services.DraftResponse, error) {
	return m.draft(m.Called(ctx, req, authorID))
}

func (m *mockAuthoringService) GetDraft(ctx context.Context, draftID, authorID string) (*services.DraftResponse, error) {
	return m.draft(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) SaveDraft(ctx context.Context, draftID, authorID string) (*services.DraftResponse, error) {
	return m.draft(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) CloseDraft(ctx context.Context, draftID, authorID string, force bool) error {
	return m.Called(ctx, draftID, authorID, force).Error(0)
}

func (m *mockAuthoringService) SetContent(ctx context.Context, draftID, authorID, contentJSON string) (*services.DraftResponse, error) {
	return m.draft(m.Called(ctx, draftID, authorID, contentJSON))
}

func (m *mockAuthoringService) AddDocument(ctx context.Context, draftID, authorID, text string) (*services.DocumentResponse, error) {
	args := m.Called(ctx, draftID, authorID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DocumentResponse), args.Error(1)
}

func (m *mockAuthoringService) UpdateDocument(ctx context.Context, draftID, authorID string, index int, text string) (*services.DocumentResponse, error) {
	args := m.Called(ctx, draftID, authorID, index, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DocumentResponse), args.Error(1)
}

func (m *mockAuthoringService) RemoveDocument(ctx context.Context, draftID, authorID string, index int) (*services.DraftResponse, error) {
	return m.draft(m.Called(ctx, draftID, authorID, index))
}

func (m *mockAuthoringService) ShowPreview(ctx context.Context, draftID, authorID string, index int) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID, index))
}

func (m *mockAuthoringService) GetPreview(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) Place(ctx context.Context, draftID, authorID string, req *services.PlaceRequest) (*services.PlacementResponse, error) {
	args := m.Called(ctx, draftID, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PlacementResponse), args.Error(1)
}

func (m *mockAuthoringService) RemovePlacement(ctx context.Context, draftID, authorID string, req *services.RemovePlacementRequest) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID, req))
}

func (m *mockAuthoringService) Retry(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) Reset(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) Play(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) Replay(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID))
}

func (m *mockAuthoringService) MediaEnded(ctx context.Context, draftID, authorID string, cue sequencer.Cue) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID, cue))
}

func (m *mockAuthoringService) MediaFailed(ctx context.Context, draftID, authorID string, req *services.MediaFailedRequest) (*preview.Snapshot, error) {
	return m.snapshot(m.Called(ctx, draftID, authorID, req))
}

func (m *mockAuthoringService) Shutdown() {
	m.Called()
}

type mockMediaService struct {
	mock.Mock
}

func (m *mockMediaService) Upload(ctx context.Context, req *services.MediaUploadRequest, reader io.Reader, actorID string) (*models.MediaUpload, error) {
	body, _ := io.ReadAll(reader)
	args := m.Called(ctx, req, string(body), actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaUpload), args.Error(1)
}

type mockExportService struct {
	mock.Mock
}

func (m *mockExportService) ExportActivityToExcel(ctx context.Context, activityID uint) ([]byte, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockExportService) ExportLessonToExcel(ctx context.Context, lessonID uint) ([]byte, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
