package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Activity ID", "Activity Title", "Lesson ID", "Type ID", "Type Name", "Document", "Valid", "Error", "Content",
}

type exportService struct {
	activities ActivityService
	logger     *slog.Logger
}

func NewExportService(activities ActivityService, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{
		activities: activities,
		logger:     logger,
	}
}

// ExportActivityToExcel writes one row per exercise document of the activity.
func (s *exportService) ExportActivityToExcel(ctx context.Context, activityID uint) ([]byte, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return s.render("Activity", []*ActivityResponse{activity})
}

// ExportLessonToExcel writes every activity of a lesson in sequence order.
func (s *exportService) ExportLessonToExcel(ctx context.Context, lessonID uint) ([]byte, error) {
	activities, err := s.activities.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return s.render("Lesson", activities)
}

func (s *exportService) render(sheetName string, activities []*ActivityResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	row := 2
	for _, activity := range activities {
		for _, record := range activityRows(activity.Activity) {
			for col, value := range record {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheetName, cell, value)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Excel export completed", "sheet", sheetName, "activities", len(activities), "rows", row-2)
	return buf.Bytes(), nil
}

// activityRows renders each document on its own row. Documents that fail to parse are
// exported with their error rather than dropped.
func activityRows(activity *models.Activity) [][]interface{} {
	desc := schema.Lookup(activity.TypeID)

	var docs []json.RawMessage
	if len(activity.ContentJSON) > 0 {
		if err := json.Unmarshal(activity.ContentJSON, &docs); err != nil {
			return [][]interface{}{{
				activity.ID, activity.Title, activity.LessonID, int(activity.TypeID), desc.Name, 0, false, err.Error(), string(activity.ContentJSON),
			}}
		}
	}

	rows := make([][]interface{}, 0, len(docs))
	for i, doc := range docs {
		valid, reason := true, ""
		if _, err := schema.Parse(activity.TypeID, doc); err != nil {
			valid, reason = false, err.Error()
		}
		rows = append(rows, []interface{}{
			activity.ID, activity.Title, activity.LessonID, int(activity.TypeID), desc.Name, i + 1, valid, reason, string(doc),
		})
	}
	return rows
}
