package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is a lesson-scoped container of exercises sharing one exercise type.
// ContentJSON holds the ordered array of exercise documents.
type Activity struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	SequenceOrder int            `json:"sequenceOrder" gorm:"not null;default:0" validate:"min=0"`
	TypeID        ExerciseTypeID `json:"typeId" gorm:"not null;index" validate:"required,exercise_type"`
	LessonID      uint           `json:"lessonId" gorm:"not null;index" validate:"required"`
	ContentJSON   datatypes.JSON `json:"contentJson" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"createdBy" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Optimistic concurrency for concurrent authors
	Version int `json:"version" gorm:"default:1"`
}

func (Activity) TableName() string {
	return "activities"
}
