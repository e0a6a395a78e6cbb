package events

import (
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of activity events
type EventType string

const (
	EventActivityCreated EventType = "activity.created"
	EventActivityUpdated EventType = "activity.updated"
	EventActivityDeleted EventType = "activity.deleted"
)

const (
	eventSource  = "exercise-authoring-service"
	eventVersion = "1.0"
)

// ActivityEvent is the envelope of every activity event
type ActivityEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      ActivityChange         `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ActivityChange is the payload shared by all activity events
type ActivityChange struct {
	ActivityID    uint                  `json:"activity_id"`
	LessonID      uint                  `json:"lesson_id"`
	TypeID        models.ExerciseTypeID `json:"type_id"`
	Title         string                `json:"title"`
	ExerciseCount int                   `json:"exercise_count"`
	Version       int                   `json:"version"`
	ActorID       string                `json:"actor_id,omitempty"`
}

// Event factory functions

func NewActivityEvent(eventType EventType, activity *models.Activity, exerciseCount int, actorID string) *ActivityEvent {
	return &ActivityEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: ActivityChange{
			ActivityID:    activity.ID,
			LessonID:      activity.LessonID,
			TypeID:        activity.TypeID,
			Title:         activity.Title,
			ExerciseCount: exerciseCount,
			Version:       activity.Version,
			ActorID:       actorID,
		},
	}
}

// GenerateEventID returns a unique event id
func GenerateEventID() string {
	return uuid.NewString()
}
