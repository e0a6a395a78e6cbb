package utils

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/go-playground/validator/v10"
)

// Custom validation functions

// ValidateExerciseType accepts only ids known to the schema registry.
func ValidateExerciseType(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return schema.IsRegistered(models.ExerciseTypeID(fl.Field().Int()))
	default:
		return false
	}
}

func ValidateMediaFolder(fl validator.FieldLevel) bool {
	validFolders := []models.MediaFolder{
		models.FolderImages,
		models.FolderAudio,
		models.FolderVideo,
	}

	value := fl.Field().String()
	for _, validFolder := range validFolders {
		if string(validFolder) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exercise_type", ValidateExerciseType)
	validate.RegisterValidation("media_folder", ValidateMediaFolder)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
