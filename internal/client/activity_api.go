package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
)

// APIError is a non-success response from the activity API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("activity api returned %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listPayload struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
}

// ActivityAPI is an ActivityRepository backed by the remote activity REST API.
type ActivityAPI struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenQueue
}

// NewActivityAPI builds a client for baseURL. tokens may be nil for unauthenticated APIs.
func NewActivityAPI(baseURL string, timeout time.Duration, tokens *TokenQueue) *ActivityAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ActivityAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

var _ repositories.ActivityRepository = (*ActivityAPI)(nil)

func (a *ActivityAPI) Create(ctx context.Context, activity *models.Activity) error {
	return a.call(ctx, http.MethodPost, "/activities", activity, activity)
}

func (a *ActivityAPI) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := a.call(ctx, http.MethodGet, "/activities/"+strconv.FormatUint(uint64(id), 10), nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityAPI) Update(ctx context.Context, activity *models.Activity) error {
	return a.call(ctx, http.MethodPut, "/activities/"+strconv.FormatUint(uint64(activity.ID), 10), activity, activity)
}

func (a *ActivityAPI) Delete(ctx context.Context, id uint) error {
	return a.call(ctx, http.MethodDelete, "/activities/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

func (a *ActivityAPI) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	query := url.Values{}
	if filters.LessonID != nil {
		query.Set("lessonId", strconv.FormatUint(uint64(*filters.LessonID), 10))
	}
	if filters.TypeID != nil {
		query.Set("typeId", strconv.Itoa(int(*filters.TypeID)))
	}
	if filters.CreatedBy != nil {
		query.Set("createdBy", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		query.Set("offset", strconv.Itoa(filters.Offset))
	}
	if filters.SortBy != "" {
		query.Set("sortBy", filters.SortBy)
		query.Set("sortOrder", filters.SortOrder)
	}

	path := "/activities"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload listPayload
	if err := a.call(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, 0, err
	}
	return payload.Activities, payload.Total, nil
}

func (a *ActivityAPI) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Activity, error) {
	var activities []*models.Activity
	path := "/lessons/" + strconv.FormatUint(uint64(lessonID), 10) + "/activities"
	if err := a.call(ctx, http.MethodGet, path, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (a *ActivityAPI) Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder) error {
	path := "/lessons/" + strconv.FormatUint(uint64(lessonID), 10) + "/activities/order"
	return a.call(ctx, http.MethodPut, path, order, nil)
}

func (a *ActivityAPI) call(ctx context.Context, method, path string, body, out interface{}) error {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	newRequest := func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if raw != nil {
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if raw != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	var (
		resp *http.Response
		err  error
	)
	if a.tokens != nil {
		resp, err = a.tokens.Do(ctx, a.httpClient, newRequest)
	} else {
		var req *http.Request
		if req, err = newRequest(ctx); err == nil {
			resp, err = a.httpClient.Do(req)
		}
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(data) > 0 {
		if err := json.Unmarshal(data, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return repositories.ErrActivityNotFound
	case resp.StatusCode == http.StatusConflict:
		return repositories.ErrVersionConflict
	case resp.StatusCode >= 300:
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
