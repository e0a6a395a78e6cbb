package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/events"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newActivityServiceWithMock() (*MockActivityRepository, *events.MockEventPublisher, ActivityService) {
	repo := new(MockActivityRepository)
	publisher := events.NewMockEventPublisher(testLogger())
	return repo, publisher, NewActivityService(repo, publisher, testLogger(), validator.New())
}

func TestActivityService_CreateStoresCanonicalContent(t *testing.T) {
	repo, publisher, service := newActivityServiceWithMock()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Activity")).
		Run(func(args mock.Arguments) {
			activity := args.Get(1).(*models.Activity)
			activity.ID = 11
			activity.Version = 1
		}).
		Return(nil)

	resp, err := service.Create(context.Background(), &CreateActivityRequest{
		Title:       "Animals",
		TypeID:      models.TypeWordFillBlank,
		LessonID:    2,
		ContentJSON: "[" + fillBlankDoc + "," + sunDoc + "]",
	}, "author-1")
	require.NoError(t, err)

	assert.Equal(t, uint(11), resp.ID)
	assert.Equal(t, 2, resp.ExerciseCount)
	assert.True(t, resp.Supported)
	assert.Equal(t, "author-1", resp.CreatedBy)
	assert.JSONEq(t, "["+fillBlankDoc+","+sunDoc+"]", string(resp.ContentJSON))
	assert.Contains(t, string(resp.ContentJSON), "\n  {\n    \"sentence\"")

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventActivityCreated, published[0].Type)
	assert.Equal(t, 2, published[0].Data.ExerciseCount)
	repo.AssertExpectations(t)
}

func TestActivityService_CreateRejectsBrokenDocuments(t *testing.T) {
	repo, publisher, service := newActivityServiceWithMock()

	_, err := service.Create(context.Background(), &CreateActivityRequest{
		Title:       "Animals",
		TypeID:      models.TypeWordFillBlank,
		LessonID:    2,
		ContentJSON: "[" + fillBlankDoc + "]" + "x",
	}, "author-1")
	require.Error(t, err)
	assert.True(t, IsContentParse(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestActivityService_CreateValidatesRequest(t *testing.T) {
	_, _, service := newActivityServiceWithMock()

	_, err := service.Create(context.Background(), &CreateActivityRequest{TypeID: 999}, "author-1")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestActivityService_StoreFailureIsPersistenceError(t *testing.T) {
	repo, publisher, service := newActivityServiceWithMock()
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := service.Create(context.Background(), &CreateActivityRequest{
		Title: "Animals", TypeID: models.TypeWordFillBlank, LessonID: 2,
	}, "author-1")
	require.Error(t, err)
	assert.True(t, IsPersistence(err))

	var pe *apperrors.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "create", pe.Operation)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestActivityService_UpdateChecksVersion(t *testing.T) {
	repo, _, service := newActivityServiceWithMock()
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Activity{
		ID: 5, Title: "Old", TypeID: models.TypeWordFillBlank, LessonID: 1, Version: 3,
	}, nil)

	title := "New"
	_, err := service.Update(context.Background(), 5, &UpdateActivityRequest{Title: &title, Version: 2}, "author-1")
	assert.ErrorIs(t, err, ErrActivityConflict)
	assert.True(t, IsConflict(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestActivityService_UpdateRejectsTypeChangeWithContent(t *testing.T) {
	repo, _, service := newActivityServiceWithMock()
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Activity{
		ID: 5, Title: "Old", TypeID: models.TypeWordFillBlank, LessonID: 1, Version: 1,
		ContentJSON: datatypes.JSON("[" + fillBlankDoc + "]"),
	}, nil)

	typeID := models.TypeSentenceOrder
	_, err := service.Update(context.Background(), 5, &UpdateActivityRequest{TypeID: &typeID, Version: 1}, "author-1")
	assert.ErrorIs(t, err, ErrActivityTypeChanged)
}

func TestActivityService_UpdatePublishesEvent(t *testing.T) {
	repo, publisher, service := newActivityServiceWithMock()
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Activity{
		ID: 5, Title: "Old", TypeID: models.TypeWordFillBlank, LessonID: 1, Version: 1,
	}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.Activity")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Activity).Version = 2
		}).
		Return(nil)

	content := "[" + fillBlankDoc + "]"
	resp, err := service.Update(context.Background(), 5, &UpdateActivityRequest{ContentJSON: &content, Version: 1}, "author-2")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Version)
	assert.Equal(t, 1, resp.ExerciseCount)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventActivityUpdated, published[0].Type)
	assert.Equal(t, "author-2", published[0].Data.ActorID)
}

func TestActivityService_GetNotFoundKeepsMeaning(t *testing.T) {
	repo, _, service := newActivityServiceWithMock()
	repo.On("GetByID", mock.Anything, uint(9)).Return(nil, repositories.ErrActivityNotFound)

	_, err := service.GetByID(context.Background(), 9)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsPersistence(err))
}

func TestActivityService_Delete(t *testing.T) {
	repo, publisher, service := newActivityServiceWithMock()
	repo.On("GetByID", mock.Anything, uint(4)).Return(&models.Activity{ID: 4, TypeID: models.TypeWordFillBlank}, nil)
	repo.On("Delete", mock.Anything, uint(4)).Return(nil)

	require.NoError(t, service.Delete(context.Background(), 4, "author-1"))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventActivityDeleted, published[0].Type)
	repo.AssertExpectations(t)
}

func TestActivityService_ListCountsDocuments(t *testing.T) {
	repo, _, service := newActivityServiceWithMock()
	lesson := uint(3)
	filters := repositories.ActivityFilters{LessonID: &lesson, Limit: 10}
	repo.On("List", mock.Anything, filters).Return([]*models.Activity{
		{ID: 1, TypeID: models.TypeWordFillBlank, ContentJSON: datatypes.JSON("[" + fillBlankDoc + "," + sunDoc + "]")},
		{ID: 2, TypeID: 999},
	}, int64(2), nil)

	resp, err := service.List(context.Background(), filters)
	require.NoError(t, err)
	require.Len(t, resp.Activities, 2)
	assert.Equal(t, 2, resp.Activities[0].ExerciseCount)
	assert.Equal(t, 0, resp.Activities[1].ExerciseCount)
	assert.False(t, resp.Activities[1].Supported)
	assert.Equal(t, int64(2), resp.Total)
}

func TestActivityService_ReorderRejectsDuplicates(t *testing.T) {
	_, _, service := newActivityServiceWithMock()

	err := service.Reorder(context.Background(), 1, []repositories.ActivityOrder{
		{ActivityID: 1, SequenceOrder: 0},
		{ActivityID: 1, SequenceOrder: 1},
	}, "author-1")
	assert.True(t, IsValidation(err))
}
