package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": "ok", "data": data})
}

func TestActivityAPI_GetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/activities/7":
			writeData(w, http.StatusOK, models.Activity{ID: 7, Title: "Animals", TypeID: models.TypeWordFillBlank, LessonID: 2, Version: 3})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := NewActivityAPI(srv.URL+"/", time.Second, nil)

	activity, err := api.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Animals", activity.Title)
	assert.Equal(t, 3, activity.Version)

	_, err = api.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, repositories.ErrActivityNotFound)
}

func TestActivityAPI_UpdateConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	api := NewActivityAPI(srv.URL, time.Second, nil)
	err := api.Update(context.Background(), &models.Activity{ID: 1, Version: 1})
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)
}

func TestActivityAPI_ServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	}))
	defer srv.Close()

	api := NewActivityAPI(srv.URL, time.Second, nil)
	err := api.Delete(context.Background(), 4)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestActivityAPI_ListEncodesFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activities", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("lessonId"))
		assert.Equal(t, "18", r.URL.Query().Get("typeId"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeData(w, http.StatusOK, map[string]interface{}{
			"activities": []models.Activity{{ID: 1}, {ID: 2}},
			"total":      12,
		})
	}))
	defer srv.Close()

	lesson := uint(5)
	typeID := models.TypeSentenceOrder
	api := NewActivityAPI(srv.URL, time.Second, nil)
	activities, total, err := api.List(context.Background(), repositories.ActivityFilters{LessonID: &lesson, TypeID: &typeID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, activities, 2)
	assert.Equal(t, int64(12), total)
}

func TestActivityAPI_CreateReplaysAfterRefresh(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in models.Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		bodies = append(bodies, in.Title)

		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		in.ID = 42
		in.Version = 1
		writeData(w, http.StatusCreated, in)
	}))
	defer srv.Close()

	q := NewTokenQueue(&oauth2.Token{AccessToken: "stale", RefreshToken: "r"}, RefresherFunc(func(context.Context, string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "fresh"}, nil
	}), nil)
	defer q.Close()

	api := NewActivityAPI(srv.URL, time.Second, q)
	activity := &models.Activity{Title: "Verbs", TypeID: models.TypeWordFillBlank, LessonID: 1}
	require.NoError(t, api.Create(context.Background(), activity))

	assert.Equal(t, uint(42), activity.ID)
	assert.Equal(t, []string{"Verbs", "Verbs"}, bodies)
}
