package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

const (
	maxChoices    = 20
	maxStatements = 20
	maxSteps      = 200
)

// ContentValidator checks the semantic rules of parsed exercise content: the JSON shape
// is already enforced by the schema registry.
type ContentValidator struct{}

// NewContentValidator creates a new content validator
func NewContentValidator() *ContentValidator {
	return &ContentValidator{}
}

// ValidateContent validates content based on its kind
func (v *ContentValidator) ValidateContent(content models.Content) error {
	if content == nil {
		return fmt.Errorf("content cannot be nil")
	}

	switch c := content.(type) {
	case *models.FillBlankContent:
		return v.validateFillBlank(c)
	case *models.MultiBlankContent:
		return v.validateMultiBlank(c)
	case *models.MatchingContent:
		return v.validateMatching(c)
	case *models.CategorizationContent:
		return v.validateCategorization(c)
	case *models.OrderingContent:
		return v.validateOrdering(c)
	case *models.TrueFalseContent:
		return v.validateTrueFalse(c)
	case *models.MultipleChoiceContent:
		return v.validateMultipleChoice(c)
	case *models.SequenceContent:
		return v.validateSequence(c)
	case *models.UnsupportedContent:
		// Inert placeholder, nothing to check.
		return nil
	default:
		return fmt.Errorf("unsupported content kind: %s", content.Kind())
	}
}

// Private validation methods for each content kind

func (v *ContentValidator) validateFillBlank(content *models.FillBlankContent) error {
	if strings.TrimSpace(content.Sentence) == "" {
		return fmt.Errorf("sentence is required")
	}

	if _, err := v.validateChoices("choices", content.Choices, 2); err != nil {
		return err
	}

	if content.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is required")
	}

	for _, choice := range content.Choices {
		if choice.Text == content.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer '%s' does not match any choice", content.CorrectAnswer)
}

func (v *ContentValidator) validateMultiBlank(content *models.MultiBlankContent) error {
	if strings.TrimSpace(content.Text) == "" {
		return fmt.Errorf("text is required")
	}

	if len(content.Blanks) == 0 {
		return fmt.Errorf("must have at least 1 blank")
	}

	if _, err := v.validateChoices("choices", content.Choices, len(content.Blanks)); err != nil {
		return err
	}

	texts := make(map[string]bool)
	for _, choice := range content.Choices {
		texts[choice.Text] = true
	}

	blankIDs := make(map[string]bool)
	for _, blank := range content.Blanks {
		if blank.ID == "" {
			return fmt.Errorf("blanks must have an ID")
		}
		if blankIDs[blank.ID] {
			return fmt.Errorf("duplicate blank ID: %s", blank.ID)
		}
		blankIDs[blank.ID] = true

		if len(blank.Answers) == 0 {
			return fmt.Errorf("blank '%s' must have at least 1 accepted answer", blank.ID)
		}
		matched := false
		for _, answer := range blank.Answers {
			if texts[answer] {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("blank '%s' has no accepted answer among the choices", blank.ID)
		}
	}

	return nil
}

func (v *ContentValidator) validateMatching(content *models.MatchingContent) error {
	sourceIDs, err := v.validateChoices("sources", content.Sources, 2)
	if err != nil {
		return err
	}

	targetIDs, err := v.validateChoices("targets", content.Targets, 2)
	if err != nil {
		return err
	}

	if len(content.Pairs) == 0 {
		return fmt.Errorf("must have at least 1 correct pair")
	}

	pairedTargets := make(map[string]bool)
	for _, pair := range content.Pairs {
		if !sourceIDs[pair.SourceID] {
			return fmt.Errorf("pair references non-existent source: %s", pair.SourceID)
		}
		if !targetIDs[pair.TargetID] {
			return fmt.Errorf("pair references non-existent target: %s", pair.TargetID)
		}
		pairedTargets[pair.TargetID] = true
	}

	for _, target := range content.Targets {
		if !pairedTargets[target.ID] {
			return fmt.Errorf("target '%s' has no matching source", target.ID)
		}
	}

	return nil
}

func (v *ContentValidator) validateCategorization(content *models.CategorizationContent) error {
	if len(content.Categories) < 2 {
		return fmt.Errorf("must have at least 2 categories")
	}

	if len(content.Items) < 2 {
		return fmt.Errorf("must have at least 2 items")
	}

	categoryIDs := make(map[string]bool)
	for _, category := range content.Categories {
		if category.ID == "" || category.Name == "" {
			return fmt.Errorf("categories must have both ID and name")
		}
		if categoryIDs[category.ID] {
			return fmt.Errorf("duplicate category ID: %s", category.ID)
		}
		categoryIDs[category.ID] = true
	}

	itemIDs := make(map[string]bool)
	filled := make(map[string]bool)
	for _, item := range content.Items {
		if item.ID == "" {
			return fmt.Errorf("items must have an ID")
		}
		if item.Text == "" && item.ImageURL == "" && item.AudioURL == "" {
			return fmt.Errorf("item '%s' must have text, an image or audio", item.ID)
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item ID: %s", item.ID)
		}
		itemIDs[item.ID] = true
		if !categoryIDs[item.CategoryID] {
			return fmt.Errorf("item '%s' references non-existent category: %s", item.ID, item.CategoryID)
		}
		filled[item.CategoryID] = true
	}

	// An empty bucket can never be filled, so the exercise could never be solved.
	for _, category := range content.Categories {
		if !filled[category.ID] {
			return fmt.Errorf("category '%s' has no items", category.ID)
		}
	}

	return nil
}

func (v *ContentValidator) validateOrdering(content *models.OrderingContent) error {
	itemIDs, err := v.validateChoices("items", content.Items, 2)
	if err != nil {
		return err
	}

	if len(content.CorrectOrder) != len(content.Items) {
		return fmt.Errorf("correct order must include all items exactly once")
	}

	orderIDs := make(map[string]bool)
	for _, orderID := range content.CorrectOrder {
		if !itemIDs[orderID] {
			return fmt.Errorf("correct order references non-existent item: %s", orderID)
		}
		if orderIDs[orderID] {
			return fmt.Errorf("correct order contains duplicate item: %s", orderID)
		}
		orderIDs[orderID] = true
	}

	return nil
}

func (v *ContentValidator) validateTrueFalse(content *models.TrueFalseContent) error {
	if len(content.Statements) == 0 {
		return fmt.Errorf("must have at least 1 statement")
	}

	if len(content.Statements) > maxStatements {
		return fmt.Errorf("cannot have more than %d statements", maxStatements)
	}

	ids := make(map[string]bool)
	for _, statement := range content.Statements {
		if statement.ID == "" {
			return fmt.Errorf("statements must have an ID")
		}
		if strings.Contains(statement.ID, ":") {
			return fmt.Errorf("statement ID '%s' cannot contain ':'", statement.ID)
		}
		if statement.Text == "" && statement.ImageURL == "" && statement.AudioURL == "" {
			return fmt.Errorf("statement '%s' must have text, an image or audio", statement.ID)
		}
		if ids[statement.ID] {
			return fmt.Errorf("duplicate statement ID: %s", statement.ID)
		}
		ids[statement.ID] = true
	}

	return nil
}

func (v *ContentValidator) validateMultipleChoice(content *models.MultipleChoiceContent) error {
	optionIDs, err := v.validateChoices("options", content.Options, 2)
	if err != nil {
		return err
	}

	if len(content.CorrectAnswers) == 0 {
		return fmt.Errorf("must have at least 1 correct answer")
	}

	seen := make(map[string]bool)
	for _, correctID := range content.CorrectAnswers {
		if !optionIDs[correctID] {
			return fmt.Errorf("correct answer ID '%s' does not match any option", correctID)
		}
		if seen[correctID] {
			return fmt.Errorf("correct answer ID '%s' is listed twice", correctID)
		}
		seen[correctID] = true
	}

	if len(content.CorrectAnswers) > 1 && !content.MultipleCorrect {
		return fmt.Errorf("multiple correct answers require multipleCorrect to be true")
	}

	return nil
}

func (v *ContentValidator) validateSequence(content *models.SequenceContent) error {
	if len(content.Steps) == 0 {
		return fmt.Errorf("must have at least 1 step")
	}

	if len(content.Steps) > maxSteps {
		return fmt.Errorf("cannot have more than %d steps", maxSteps)
	}

	for i, step := range content.Steps {
		if step.Text == "" && step.AudioURL == "" && step.ImageURL == "" {
			return fmt.Errorf("step %d must have text, audio or an image", i+1)
		}
		if step.DurationMs < 0 {
			return fmt.Errorf("step %d duration cannot be negative", i+1)
		}
	}

	return nil
}

// validateChoices checks a token list and returns its id set.
func (v *ContentValidator) validateChoices(field string, choices []models.Choice, min int) (map[string]bool, error) {
	if min < 1 {
		min = 1
	}

	if len(choices) < min {
		return nil, fmt.Errorf("%s must have at least %d entries", field, min)
	}

	if len(choices) > maxChoices {
		return nil, fmt.Errorf("%s cannot have more than %d entries", field, maxChoices)
	}

	ids := make(map[string]bool)
	for _, choice := range choices {
		if choice.ID == "" {
			return nil, fmt.Errorf("%s entries must have an ID", field)
		}
		if choice.Text == "" && choice.ImageURL == "" && choice.AudioURL == "" {
			return nil, fmt.Errorf("%s entry '%s' must have text, an image or audio", field, choice.ID)
		}
		if ids[choice.ID] {
			return nil, fmt.Errorf("%s contains duplicate ID: %s", field, choice.ID)
		}
		ids[choice.ID] = true
	}

	return ids, nil
}
