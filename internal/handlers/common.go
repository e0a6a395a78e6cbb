package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PersistenceNotice is returned when a save or load failed. Clients must show it and
// keep the author on the page.
type PersistenceNotice struct {
	Operation  string `json:"operation"`
	ActivityID uint   `json:"activityId,omitempty"`
	Blocking   bool   `json:"blocking"`
	Reason     string `json:"reason"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetString(requestIDKey),
		"user_id", h.extractUserID(c),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetString(requestIDKey),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetString(requestIDKey),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.Warn(message, fields...)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get(userIDKey); exists {
		return userID
	}
	return nil
}

// currentUser returns the authenticated user or writes 401.
func (h *BaseHandler) currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID, true
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	if parseErrors := collectParseErrors(err); len(parseErrors) > 0 {
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Exercise content does not parse", err, parseErrors)
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, services.ValidationErrors{*validationError})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	var persistenceError *apperrors.PersistenceError
	if errors.As(err, &persistenceError) {
		h.RespondWithError(c, http.StatusBadGateway, "Activity store unavailable", err, PersistenceNotice{
			Operation:  persistenceError.Operation,
			ActivityID: persistenceError.ActivityID,
			Blocking:   true,
			Reason:     persistenceError.Err.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrActivityNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Activity not found", err)
	case errors.Is(err, services.ErrDraftNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Draft not found", err)
	case errors.Is(err, preview.ErrNoSession):
		h.RespondWithError(c, http.StatusNotFound, "Nothing is being previewed", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, services.ErrActivityConflict):
		h.RespondWithError(c, http.StatusConflict, "Activity was modified by another author", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, services.ErrDraftClosed):
		h.RespondWithError(c, http.StatusGone, "Draft is closed", err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, preview.ErrWrongSession),
		errors.Is(err, engine.ErrUnknownToken),
		errors.Is(err, engine.ErrUnknownSlot),
		errors.Is(err, engine.ErrNotAccepted):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, engine.ErrNotLoaded), errors.Is(err, sequencer.ErrNotLoaded):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, sequencer.ErrNoSteps), errors.Is(err, engine.ErrInvalidBoard):
		h.RespondWithError(c, http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, services.ErrMediaEmpty):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrMediaTooLarge):
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// collectParseErrors returns every ContentParseError carried by err, including errors
// joined together.
func collectParseErrors(err error) []*apperrors.ContentParseError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*apperrors.ContentParseError
		for _, e := range joined.Unwrap() {
			out = append(out, collectParseErrors(e)...)
		}
		return out
	}

	var pe *apperrors.ContentParseError
	if errors.As(err, &pe) {
		return []*apperrors.ContentParseError{pe}
	}
	return nil
}

// ===== PARAM HELPERS =====

func parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: idStr,
		})
		return 0
	}
	return uint(id)
}

func parseIndexParam(c *gin.Context, param string) (int, bool) {
	idxStr := c.Param(param)
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: idxStr,
		})
		return 0, false
	}
	return idx, true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
