package engine

import (
	"fmt"
	"strconv"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

const (
	BlankSlotID  = "blank"
	AnswerSlotID = "answer"
)

// BuildOption adjusts a board after the kind defaults are applied.
type BuildOption func(*buildOptions)

type buildOptions struct {
	typeID models.ExerciseTypeID
}

// ForType applies the drop policy of one exercise type on top of its kind defaults.
func ForType(typeID models.ExerciseTypeID) BuildOption {
	return func(o *buildOptions) {
		o.typeID = typeID
	}
}

// PolicyFor returns the drop policy of an exercise type. Ordering variants swap,
// categorization and memory pairs reject mismatched drops, everything else displaces
// the occupant back to the pool.
func PolicyFor(typeID models.ExerciseTypeID, kind models.ExerciseKind) Policy {
	switch {
	case kind == models.KindOrdering:
		return Policy{Swap: true}
	case kind == models.KindCategorization:
		return Policy{RejectMismatch: true}
	case typeID == models.TypeMemoryPairs:
		return Policy{RejectMismatch: true}
	default:
		return Policy{}
	}
}

// Build derives the board of an interactive content document.
func Build(content models.Content, opts ...BuildOption) (*Board, error) {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var board *Board
	switch c := content.(type) {
	case *models.FillBlankContent:
		board = buildFillBlank(c)
	case *models.MultiBlankContent:
		board = buildMultiBlank(c)
	case *models.MatchingContent:
		board = buildMatching(c)
	case *models.CategorizationContent:
		board = buildCategorization(c)
	case *models.OrderingContent:
		board = buildOrdering(c)
	case *models.TrueFalseContent:
		board = buildTrueFalse(c)
	case *models.MultipleChoiceContent:
		board = buildMultipleChoice(c)
	case nil:
		return nil, fmt.Errorf("%w: content is nil", ErrNotInteractive)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotInteractive, content.Kind())
	}

	board.Policy = PolicyFor(o.typeID, content.Kind())
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

func tokensFrom(choices []models.Choice) []Token {
	tokens := make([]Token, 0, len(choices))
	for _, c := range choices {
		tokens = append(tokens, Token{ID: c.ID, Text: c.Text, ImageURL: c.ImageURL, AudioURL: c.AudioURL})
	}
	return tokens
}

func buildFillBlank(c *models.FillBlankContent) *Board {
	return &Board{
		Tokens: tokensFrom(c.Choices),
		Slots: []Slot{{
			ID:        BlankSlotID,
			Label:     c.Sentence,
			Capacity:  1,
			Predicate: Equals(c.CorrectAnswer, true),
		}},
	}
}

func buildMultiBlank(c *models.MultiBlankContent) *Board {
	slots := make([]Slot, 0, len(c.Blanks))
	for _, blank := range c.Blanks {
		slots = append(slots, Slot{
			ID:        blank.ID,
			Capacity:  1,
			Predicate: OneOf(blank.Answers, true),
		})
	}
	return &Board{Tokens: tokensFrom(c.Choices), Slots: slots}
}

func buildMatching(c *models.MatchingContent) *Board {
	sources := make(map[string][]string)
	for _, pair := range c.Pairs {
		sources[pair.TargetID] = append(sources[pair.TargetID], pair.SourceID)
	}

	slots := make([]Slot, 0, len(c.Targets))
	for _, target := range c.Targets {
		slots = append(slots, Slot{
			ID:        target.ID,
			Label:     target.Text,
			Capacity:  1,
			Predicate: OneOf(sources[target.ID], false),
		})
	}
	return &Board{Tokens: tokensFrom(c.Sources), Slots: slots}
}

func buildCategorization(c *models.CategorizationContent) *Board {
	members := make(map[string][]string)
	tokens := make([]Token, 0, len(c.Items))
	for _, item := range c.Items {
		members[item.CategoryID] = append(members[item.CategoryID], item.ID)
		tokens = append(tokens, Token{ID: item.ID, Text: item.Text, ImageURL: item.ImageURL, AudioURL: item.AudioURL})
	}

	slots := make([]Slot, 0, len(c.Categories))
	for _, category := range c.Categories {
		capacity := len(members[category.ID])
		if capacity == 0 {
			capacity = 1
		}
		slots = append(slots, Slot{
			ID:        category.ID,
			Label:     category.Name,
			Capacity:  capacity,
			Predicate: OneOf(members[category.ID], false),
		})
	}
	return &Board{Tokens: tokens, Slots: slots}
}

// PositionSlotID names the slot of the 0-based ordinal position i.
func PositionSlotID(i int) string {
	return "pos-" + strconv.Itoa(i+1)
}

func buildOrdering(c *models.OrderingContent) *Board {
	slots := make([]Slot, 0, len(c.CorrectOrder))
	for i := range c.CorrectOrder {
		slots = append(slots, Slot{
			ID:        PositionSlotID(i),
			Label:     strconv.Itoa(i + 1),
			Capacity:  1,
			Predicate: AtPosition(i, c.CorrectOrder),
		})
	}
	return &Board{Tokens: tokensFrom(c.Items), Slots: slots}
}

// TrueFalseTokenID names the verdict token of one statement.
func TrueFalseTokenID(statementID string, verdict bool) string {
	return statementID + ":" + strconv.FormatBool(verdict)
}

func buildTrueFalse(c *models.TrueFalseContent) *Board {
	tokens := make([]Token, 0, 2*len(c.Statements))
	slots := make([]Slot, 0, len(c.Statements))
	for _, st := range c.Statements {
		yes, no := TrueFalseTokenID(st.ID, true), TrueFalseTokenID(st.ID, false)
		tokens = append(tokens, Token{ID: yes, Text: "True"}, Token{ID: no, Text: "False"})
		slots = append(slots, Slot{
			ID:        st.ID,
			Label:     st.Text,
			Capacity:  1,
			Accepts:   []string{yes, no},
			Predicate: Equals(TrueFalseTokenID(st.ID, st.Answer), false),
		})
	}
	return &Board{Tokens: tokens, Slots: slots}
}

func buildMultipleChoice(c *models.MultipleChoiceContent) *Board {
	capacity := 1
	if c.MultipleCorrect && len(c.CorrectAnswers) > 1 {
		capacity = len(c.CorrectAnswers)
	}
	return &Board{
		Tokens: tokensFrom(c.Options),
		Slots: []Slot{{
			ID:        AnswerSlotID,
			Label:     c.Question,
			Capacity:  capacity,
			Predicate: OneOf(c.CorrectAnswers, false),
		}},
	}
}
