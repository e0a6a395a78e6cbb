package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"gorm.io/gorm"
)

var activitySortColumns = map[string]string{
	"":               "sequence_order",
	"sequence_order": "sequence_order",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"title":          "title",
}

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

// AutoMigrate creates or updates the activities table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Activity{})
}

// Create creates a new activity
func (a *ActivityPostgreSQL) Create(ctx context.Context, activity *models.Activity) error {
	activity.Version = 1
	if err := a.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by ID
func (a *ActivityPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	err := a.db.WithContext(ctx).First(&activity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// Update writes the activity when its version is still current and bumps the version
func (a *ActivityPostgreSQL) Update(ctx context.Context, activity *models.Activity) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Activity{}).
			Where("id = ? AND version = ?", activity.ID, activity.Version).
			Updates(map[string]interface{}{
				"title":          activity.Title,
				"sequence_order": activity.SequenceOrder,
				"type_id":        activity.TypeID,
				"lesson_id":      activity.LessonID,
				"content_json":   activity.ContentJSON,
				"version":        gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update activity: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Activity{}).Where("id = ?", activity.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return repositories.ErrActivityNotFound
			}
			return repositories.ErrVersionConflict
		}

		return tx.First(activity, activity.ID).Error
	})
}

// Delete soft deletes an activity
func (a *ActivityPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := a.db.WithContext(ctx).Delete(&models.Activity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrActivityNotFound
	}
	return nil
}

// List retrieves activities with filters and pagination
func (a *ActivityPostgreSQL) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Activity{})

	// Apply filters
	query = a.applyFilters(query, filters)

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination and ordering
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, activitySortColumns)

	var activities []*models.Activity
	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

// GetByLesson retrieves every activity of a lesson in sequence order
func (a *ActivityPostgreSQL) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := a.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("sequence_order ASC").
		Order("id ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// Reorder updates the sequence order of activities within a lesson
func (a *ActivityPostgreSQL) Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range order {
			result := tx.Model(&models.Activity{}).
				Where("id = ? AND lesson_id = ?", o.ActivityID, lessonID).
				Update("sequence_order", o.SequenceOrder)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder activity %d: %w", o.ActivityID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("activity %d: %w", o.ActivityID, repositories.ErrActivityNotFound)
			}
		}
		return nil
	})
}

func (a *ActivityPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ActivityFilters) *gorm.DB {
	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}
	if filters.TypeID != nil {
		query = query.Where("type_id = ?", *filters.TypeID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", fmt.Sprintf("%%%s%%", filters.Search))
	}
	return query
}
