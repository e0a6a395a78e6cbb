package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Activity specific errors
	ErrActivityNotFound    = repositories.ErrActivityNotFound
	ErrActivityConflict    = repositories.ErrVersionConflict
	ErrActivityHasErrors   = errors.New("activity content has documents that do not parse")
	ErrActivityTypeChanged = errors.New("exercise type of an activity cannot change while it has content")

	// Draft specific errors
	ErrDraftNotFound     = errors.New("draft not found")
	ErrDraftAccessDenied = errors.New("access denied to draft")
	ErrDraftClosed       = errors.New("draft is closed")

	// Media specific errors
	ErrMediaEmpty           = errors.New("uploaded file is empty")
	ErrMediaTooLarge        = errors.New("uploaded file exceeds the size limit")
	ErrMediaUnsupportedType = errors.New("uploaded file type is not allowed in this folder")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrDraftNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrDraftAccessDenied)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsContentParse checks if error carries a malformed exercise document
func IsContentParse(err error) bool {
	return apperrors.IsContentParse(err) || errors.Is(err, ErrActivityHasErrors)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrActivityConflict) ||
		errors.Is(err, ErrActivityTypeChanged)
}

// IsPersistence checks if error is a failed save or load against the activity store
func IsPersistence(err error) bool {
	return apperrors.IsPersistence(err)
}

// persistenceError wraps store failures; not-found and version conflicts keep their meaning.
func persistenceError(operation string, activityID uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrActivityNotFound) || errors.Is(err, ErrActivityConflict) {
		return err
	}
	return apperrors.NewPersistenceError(operation, activityID, err)
}
