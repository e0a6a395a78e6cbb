package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
)

// ActivityService manages persisted activities. Content is validated document by
// document before it reaches the store.
type ActivityService interface {
	Create(ctx context.Context, req *CreateActivityRequest, actorID string) (*ActivityResponse, error)
	GetByID(ctx context.Context, id uint) (*ActivityResponse, error)
	Update(ctx context.Context, id uint, req *UpdateActivityRequest, actorID string) (*ActivityResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error
	List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]*ActivityResponse, error)
	Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder, actorID string) error
}

// AuthoringService owns the live drafts an author edits and previews. Each draft runs
// its edits, preview interactions and media signals on its own dispatch queue.
type AuthoringService interface {
	// Draft lifecycle
	OpenDraft(ctx context.Context, req *OpenDraftRequest, authorID string) (*DraftResponse, error)
	GetDraft(ctx context.Context, draftID, authorID string) (*DraftResponse, error)
	SaveDraft(ctx context.Context, draftID, authorID string) (*DraftResponse, error)
	CloseDraft(ctx context.Context, draftID, authorID string, force bool) error

	// Document editing
	SetContent(ctx context.Context, draftID, authorID, contentJSON string) (*DraftResponse, error)
	AddDocument(ctx context.Context, draftID, authorID, text string) (*DocumentResponse, error)
	UpdateDocument(ctx context.Context, draftID, authorID string, index int, text string) (*DocumentResponse, error)
	RemoveDocument(ctx context.Context, draftID, authorID string, index int) (*DraftResponse, error)

	// Preview
	ShowPreview(ctx context.Context, draftID, authorID string, index int) (*preview.Snapshot, error)
	GetPreview(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)
	Place(ctx context.Context, draftID, authorID string, req *PlaceRequest) (*PlacementResponse, error)
	RemovePlacement(ctx context.Context, draftID, authorID string, req *RemovePlacementRequest) (*preview.Snapshot, error)
	Retry(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)
	Reset(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)
	Play(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)
	Replay(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)
	MediaEnded(ctx context.Context, draftID, authorID string, cue sequencer.Cue) (*preview.Snapshot, error)
	MediaFailed(ctx context.Context, draftID, authorID string, req *MediaFailedRequest) (*preview.Snapshot, error)

	// Shutdown closes every open draft.
	Shutdown()
}

// MediaService stores uploaded exercise media.
type MediaService interface {
	Upload(ctx context.Context, req *MediaUploadRequest, reader io.Reader, actorID string) (*models.MediaUpload, error)
}

// ExportService renders activities to spreadsheets.
type ExportService interface {
	ExportActivityToExcel(ctx context.Context, activityID uint) ([]byte, error)
	ExportLessonToExcel(ctx context.Context, lessonID uint) ([]byte, error)
}

// ServiceManager groups the services the HTTP layer depends on.
type ServiceManager interface {
	Activity() ActivityService
	Authoring() AuthoringService
	Media() MediaService
	Export() ExportService
	Close()
}

type serviceManager struct {
	activity  ActivityService
	authoring AuthoringService
	media     MediaService
	export    ExportService
}

func NewServiceManager(activity ActivityService, authoring AuthoringService, media MediaService, export ExportService) ServiceManager {
	return &serviceManager{
		activity:  activity,
		authoring: authoring,
		media:     media,
		export:    export,
	}
}

func (m *serviceManager) Activity() ActivityService   { return m.activity }
func (m *serviceManager) Authoring() AuthoringService { return m.authoring }
func (m *serviceManager) Media() MediaService         { return m.media }
func (m *serviceManager) Export() ExportService       { return m.export }

func (m *serviceManager) Close() {
	if m.authoring != nil {
		m.authoring.Shutdown()
	}
}
