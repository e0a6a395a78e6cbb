package repositories

import (
	"errors"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrVersionConflict  = errors.New("activity was modified by another author")
)

// ===== SHARED FILTER STRUCTS =====

type ActivityFilters struct {
	LessonID  *uint                  `json:"lesson_id"`
	TypeID    *models.ExerciseTypeID `json:"type_id"`
	CreatedBy *string                `json:"created_by"`
	Search    string                 `json:"search"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`    // "sequence_order", "created_at", "title"
	SortOrder string                 `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED HELPER STRUCTS =====

type ActivityOrder struct {
	ActivityID    uint `json:"activityId" validate:"required"`
	SequenceOrder int  `json:"sequenceOrder" validate:"min=0"`
}
