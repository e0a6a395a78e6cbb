package errors

import (
	"errors"
	"fmt"
)

// ContentParseError reports a malformed exercise document. It is scoped to the one
// document at Index and never blocks its siblings.
type ContentParseError struct {
	Index  int    `json:"index"`
	TypeID int    `json:"typeId"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *ContentParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("document %d: line %d, column %d: %s", e.Index+1, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("document %d: %s", e.Index+1, e.Reason)
}

func (e *ContentParseError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError reports an exercise type outside the schema registry. It is
// informational: callers render an inert placeholder.
type UnsupportedTypeError struct {
	TypeID int `json:"typeId"`
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported exercise type: %d", e.TypeID)
}

// MediaPlaybackError reports a failed or rejected playback. Playback continues silently.
type MediaPlaybackError struct {
	URL  string `json:"url,omitempty"`
	Step int    `json:"step"`
	Err  error  `json:"-"`
}

func (e *MediaPlaybackError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("media playback failed for step %d", e.Step+1)
	}
	return fmt.Sprintf("media playback failed for step %d: %v", e.Step+1, e.Err)
}

func (e *MediaPlaybackError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed save or load against the activity store. It is
// always surfaced to the author.
type PersistenceError struct {
	Operation  string `json:"operation"`
	ActivityID uint   `json:"activityId,omitempty"`
	Err        error  `json:"-"`
}

func (e *PersistenceError) Error() string {
	if e.ActivityID != 0 {
		return fmt.Sprintf("failed to %s activity %d: %v", e.Operation, e.ActivityID, e.Err)
	}
	return fmt.Sprintf("failed to %s activity: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(operation string, activityID uint, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, ActivityID: activityID, Err: err}
}

// IsContentParse reports whether err is or wraps a ContentParseError.
func IsContentParse(err error) bool {
	var pe *ContentParseError
	return errors.As(err, &pe)
}

func IsUnsupportedType(err error) bool {
	var ue *UnsupportedTypeError
	return errors.As(err, &ue)
}

func IsMediaPlayback(err error) bool {
	var me *MediaPlaybackError
	return errors.As(err, &me)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
