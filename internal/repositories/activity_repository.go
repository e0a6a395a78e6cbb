package repositories

import (
	"context"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

// ActivityRepository reads and writes activities by lesson and activity id
type ActivityRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error // Fails with ErrVersionConflict on a stale version
	Delete(ctx context.Context, id uint) error                   // Soft delete

	// Query operations
	List(ctx context.Context, filters ActivityFilters) ([]*models.Activity, int64, error)
	GetByLesson(ctx context.Context, lessonID uint) ([]*models.Activity, error) // Ordered by sequence order

	// Ordering
	Reorder(ctx context.Context, lessonID uint, order []ActivityOrder) error
}
