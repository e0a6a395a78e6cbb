package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/authoring"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/events"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"gorm.io/datatypes"
)

type activityService struct {
	repo      repositories.ActivityRepository
	publisher events.EventPublisher
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewActivityService(repo repositories.ActivityRepository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &activityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "activity", Component: "service"}),
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *activityService) Create(ctx context.Context, req *CreateActivityRequest, actorID string) (resp *ActivityResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "create_activity", actorID)
	defer func() { op.LogResult(resourceID(resp), "activity", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	payload, count, err := s.canonicalContent(req.TypeID, req.ContentJSON)
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Title:         req.Title,
		SequenceOrder: req.SequenceOrder,
		TypeID:        req.TypeID,
		LessonID:      req.LessonID,
		ContentJSON:   datatypes.JSON(payload),
		CreatedBy:     actorID,
	}

	if err = s.repo.Create(ctx, activity); err != nil {
		return nil, persistenceError("create", 0, err)
	}

	op.LogAudit(AuditEventCreate, strconv.FormatUint(uint64(activity.ID), 10), "activity", map[string]interface{}{
		"lesson_id":      activity.LessonID,
		"type_id":        activity.TypeID,
		"exercise_count": count,
	})
	s.publish(ctx, events.EventActivityCreated, activity, count, actorID)

	return s.buildResponse(activity, count), nil
}

func (s *activityService) GetByID(ctx context.Context, id uint) (*ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load", id, err)
	}
	return s.buildResponse(activity, countDocuments(activity.ContentJSON)), nil
}

func (s *activityService) Update(ctx context.Context, id uint, req *UpdateActivityRequest, actorID string) (resp *ActivityResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "update_activity", actorID)
	defer func() { op.LogResult(strconv.FormatUint(uint64(id), 10), "activity", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load", id, err)
	}
	if activity.Version != req.Version {
		return nil, ErrActivityConflict
	}

	if req.TypeID != nil && *req.TypeID != activity.TypeID {
		if req.ContentJSON == nil && countDocuments(activity.ContentJSON) > 0 {
			return nil, ErrActivityTypeChanged
		}
		activity.TypeID = *req.TypeID
	}
	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.SequenceOrder != nil {
		activity.SequenceOrder = *req.SequenceOrder
	}

	count := countDocuments(activity.ContentJSON)
	if req.ContentJSON != nil {
		var payload []byte
		if payload, count, err = s.canonicalContent(activity.TypeID, *req.ContentJSON); err != nil {
			return nil, err
		}
		activity.ContentJSON = datatypes.JSON(payload)
	}

	if err = s.repo.Update(ctx, activity); err != nil {
		return nil, persistenceError("save", id, err)
	}

	op.LogAudit(AuditEventUpdate, strconv.FormatUint(uint64(id), 10), "activity", map[string]interface{}{
		"version":        activity.Version,
		"exercise_count": count,
	})
	s.publish(ctx, events.EventActivityUpdated, activity, count, actorID)

	return s.buildResponse(activity, count), nil
}

func (s *activityService) Delete(ctx context.Context, id uint, actorID string) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_activity", actorID)
	defer func() { op.LogResult(strconv.FormatUint(uint64(id), 10), "activity", err) }()

	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return persistenceError("load", id, err)
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return persistenceError("delete", id, err)
	}

	op.LogAudit(AuditEventDelete, strconv.FormatUint(uint64(id), 10), "activity", nil)
	s.publish(ctx, events.EventActivityDeleted, activity, countDocuments(activity.ContentJSON), actorID)
	return nil
}

func (s *activityService) List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	activities, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, persistenceError("list", 0, err)
	}

	resp := &ActivityListResponse{
		Activities: make([]*ActivityResponse, 0, len(activities)),
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	for _, activity := range activities {
		resp.Activities = append(resp.Activities, s.buildResponse(activity, countDocuments(activity.ContentJSON)))
	}
	return resp, nil
}

func (s *activityService) ListByLesson(ctx context.Context, lessonID uint) ([]*ActivityResponse, error) {
	activities, err := s.repo.GetByLesson(ctx, lessonID)
	if err != nil {
		return nil, persistenceError("list", 0, err)
	}

	out := make([]*ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		out = append(out, s.buildResponse(activity, countDocuments(activity.ContentJSON)))
	}
	return out, nil
}

func (s *activityService) Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder, actorID string) (err error) {
	op := s.opLogger.WithOperation(ctx, "reorder_activities", actorID)
	defer func() { op.LogResult(strconv.FormatUint(uint64(lessonID), 10), "lesson", err) }()

	if len(order) == 0 {
		return NewValidationError("order", "at least one activity is required", nil)
	}
	seen := make(map[uint]bool, len(order))
	for _, o := range order {
		if seen[o.ActivityID] {
			return NewValidationError("order", "activity listed more than once", o.ActivityID)
		}
		seen[o.ActivityID] = true
	}

	if err = s.repo.Reorder(ctx, lessonID, order); err != nil {
		return persistenceError("reorder", 0, err)
	}
	return nil
}

// ===== HELPERS =====

// canonicalContent parses every document and returns the canonical payload. All parse
// errors are returned together so the author sees every broken document at once.
func (s *activityService) canonicalContent(typeID models.ExerciseTypeID, contentJSON string) ([]byte, int, error) {
	pipeline := authoring.NewPipeline(typeID, authoring.WithValidator(s.validator.Content()))
	pipeline.Load(contentJSON)

	payload, err := pipeline.Payload()
	if err != nil {
		return nil, 0, err
	}
	return payload, pipeline.Len(), nil
}

func (s *activityService) publish(ctx context.Context, eventType events.EventType, activity *models.Activity, count int, actorID string) {
	if s.publisher == nil {
		return
	}
	event := events.NewActivityEvent(eventType, activity, count, actorID)
	if err := s.publisher.PublishActivityEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish activity event",
			"event_type", eventType,
			"activity_id", activity.ID,
			"error", err)
	}
}

func (s *activityService) buildResponse(activity *models.Activity, count int) *ActivityResponse {
	desc := schema.Lookup(activity.TypeID)
	return &ActivityResponse{
		Activity:      activity,
		TypeName:      desc.Name,
		Supported:     desc.Supported,
		ExerciseCount: count,
	}
}

func countDocuments(raw datatypes.JSON) int {
	if len(raw) == 0 {
		return 0
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return 0
	}
	return len(docs)
}

func resourceID(resp *ActivityResponse) string {
	if resp == nil || resp.Activity == nil {
		return ""
	}
	return strconv.FormatUint(uint64(resp.ID), 10)
}
