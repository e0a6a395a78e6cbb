package services

import (
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
)

// ===== ACTIVITY REQUESTS =====

type CreateActivityRequest struct {
	Title         string                `json:"title" validate:"required,min=1,max=200"`
	SequenceOrder int                   `json:"sequenceOrder" validate:"min=0"`
	TypeID        models.ExerciseTypeID `json:"typeId" validate:"required,exercise_type"`
	LessonID      uint                  `json:"lessonId" validate:"required"`
	ContentJSON   string                `json:"contentJson"`
}

type UpdateActivityRequest struct {
	Title         *string                `json:"title" validate:"omitempty,min=1,max=200"`
	SequenceOrder *int                   `json:"sequenceOrder" validate:"omitempty,min=0"`
	TypeID        *models.ExerciseTypeID `json:"typeId" validate:"omitempty,exercise_type"`
	ContentJSON   *string                `json:"contentJson"`
	Version       int                    `json:"version" validate:"required,min=1"`
}

type ReorderActivitiesRequest struct {
	Order []repositories.ActivityOrder `json:"order" validate:"required,min=1,dive"`
}

// ===== ACTIVITY RESPONSES =====

type ActivityResponse struct {
	*models.Activity
	TypeName      string `json:"typeName"`
	Supported     bool   `json:"supported"`
	ExerciseCount int    `json:"exerciseCount"`
}

type ActivityListResponse struct {
	Activities []*ActivityResponse `json:"activities"`
	Total      int64               `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ===== DRAFT REQUESTS =====

// OpenDraftRequest opens an existing activity when ActivityID is set, otherwise a new
// empty activity of TypeID.
type OpenDraftRequest struct {
	ActivityID    *uint                 `json:"activityId"`
	Title         string                `json:"title" validate:"max=200"`
	TypeID        models.ExerciseTypeID `json:"typeId"`
	LessonID      uint                  `json:"lessonId"`
	SequenceOrder int                   `json:"sequenceOrder" validate:"min=0"`
}

type ContentRequest struct {
	ContentJSON string `json:"contentJson"`
}

type DocumentRequest struct {
	Text string `json:"text" validate:"required"`
}

type PlaceRequest struct {
	SlotID  string `json:"slotId" validate:"required"`
	TokenID string `json:"tokenId" validate:"required"`
}

// RemovePlacementRequest empties a slot or sends one token back to the pool.
type RemovePlacementRequest struct {
	SlotID  string `json:"slotId" validate:"required_without=TokenID"`
	TokenID string `json:"tokenId" validate:"required_without=SlotID"`
}

type MediaFailedRequest struct {
	Cue    sequencer.Cue `json:"cue"`
	Reason string        `json:"reason"`
}

// ===== DRAFT RESPONSES =====

type DocumentResponse struct {
	Index    int                          `json:"index"`
	Text     string                       `json:"text"`
	Revision uint64                       `json:"revision"`
	Valid    bool                         `json:"valid"`
	Error    *apperrors.ContentParseError `json:"error,omitempty"`
}

type DraftResponse struct {
	ID            string                `json:"id"`
	ActivityID    uint                  `json:"activityId,omitempty"`
	Version       int                   `json:"version,omitempty"`
	Title         string                `json:"title"`
	TypeID        models.ExerciseTypeID `json:"typeId"`
	TypeName      string                `json:"typeName"`
	Supported     bool                  `json:"supported"`
	LessonID      uint                  `json:"lessonId"`
	SequenceOrder int                   `json:"sequenceOrder"`
	Documents     []DocumentResponse    `json:"documents"`
	Combined      string                `json:"combined"`
	Dirty         bool                  `json:"dirty"`
	PreviewIndex  *int                  `json:"previewIndex,omitempty"`
	LastSaveError string                `json:"lastSaveError,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

type PlacementResponse struct {
	Outcome  engine.Outcome   `json:"outcome"`
	Snapshot preview.Snapshot `json:"snapshot"`
}

// ===== MEDIA =====

type MediaUploadRequest struct {
	Folder      models.MediaFolder `json:"folder" validate:"required,media_folder"`
	Filename    string             `json:"filename" validate:"required"`
	Size        int64              `json:"size"`
	ContentType string             `json:"contentType"`
}
