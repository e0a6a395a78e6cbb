package schema

import (
	"sort"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

// Shape names the JSON shape of one declared field.
type Shape string

const (
	ShapeText          Shape = "text"
	ShapeURL           Shape = "url"
	ShapeBool          Shape = "bool"
	ShapeChoiceList    Shape = "choice_list"
	ShapeIDList        Shape = "id_list"
	ShapeBlankList     Shape = "blank_list"
	ShapePairList      Shape = "pair_list"
	ShapeCategoryList  Shape = "category_list"
	ShapeItemList      Shape = "category_item_list"
	ShapeStatementList Shape = "statement_list"
	ShapeStepList      Shape = "step_list"
)

// FieldSpec declares one field of a content document.
type FieldSpec struct {
	Name     string `json:"name"`
	Shape    Shape  `json:"shape"`
	Required bool   `json:"required"`
}

// Descriptor describes the expected content shape of one exercise type. It carries no
// behavior.
type Descriptor struct {
	TypeID    models.ExerciseTypeID `json:"typeId"`
	Name      string                `json:"name"`
	Kind      models.ExerciseKind   `json:"kind"`
	Supported bool                  `json:"supported"`
	Fields    []FieldSpec           `json:"fields"`
}

var kindFields = map[models.ExerciseKind][]FieldSpec{
	models.KindFillBlank: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "sentence", Shape: ShapeText, Required: true},
		{Name: "choices", Shape: ShapeChoiceList, Required: true},
		{Name: "correctAnswer", Shape: ShapeText, Required: true},
		{Name: "imageUrl", Shape: ShapeURL},
		{Name: "audioUrl", Shape: ShapeURL},
	},
	models.KindMultiBlank: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "text", Shape: ShapeText, Required: true},
		{Name: "choices", Shape: ShapeChoiceList, Required: true},
		{Name: "blanks", Shape: ShapeBlankList, Required: true},
		{Name: "audioUrl", Shape: ShapeURL},
	},
	models.KindMatching: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "sources", Shape: ShapeChoiceList, Required: true},
		{Name: "targets", Shape: ShapeChoiceList, Required: true},
		{Name: "pairs", Shape: ShapePairList, Required: true},
	},
	models.KindCategorization: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "categories", Shape: ShapeCategoryList, Required: true},
		{Name: "items", Shape: ShapeItemList, Required: true},
	},
	models.KindOrdering: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "items", Shape: ShapeChoiceList, Required: true},
		{Name: "correctOrder", Shape: ShapeIDList, Required: true},
		{Name: "audioUrl", Shape: ShapeURL},
	},
	models.KindTrueFalse: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "statements", Shape: ShapeStatementList, Required: true},
	},
	models.KindMultipleChoice: {
		{Name: "instructions", Shape: ShapeText},
		{Name: "question", Shape: ShapeText, Required: true},
		{Name: "options", Shape: ShapeChoiceList, Required: true},
		{Name: "correctAnswers", Shape: ShapeIDList, Required: true},
		{Name: "multipleCorrect", Shape: ShapeBool},
		{Name: "imageUrl", Shape: ShapeURL},
		{Name: "audioUrl", Shape: ShapeURL},
	},
	models.KindSequence: {
		{Name: "title", Shape: ShapeText},
		{Name: "word", Shape: ShapeText},
		{Name: "steps", Shape: ShapeStepList, Required: true},
		{Name: "audioUrl", Shape: ShapeURL},
	},
}

type entry struct {
	name string
	kind models.ExerciseKind
}

var entries = map[models.ExerciseTypeID]entry{
	models.TypeWordFillBlank:         {"Word fill in the blank", models.KindFillBlank},
	models.TypeSentenceFillBlank:     {"Sentence fill in the blank", models.KindFillBlank},
	models.TypePictureFillBlank:      {"Picture fill in the blank", models.KindFillBlank},
	models.TypeAudioFillBlank:        {"Audio fill in the blank", models.KindFillBlank},
	models.TypeParagraphMultiBlank:   {"Paragraph with blanks", models.KindMultiBlank},
	models.TypeDialogueMultiBlank:    {"Dialogue with blanks", models.KindMultiBlank},
	models.TypeConjugationTable:      {"Conjugation table", models.KindMultiBlank},
	models.TypeWordPictureMatch:      {"Match words to pictures", models.KindMatching},
	models.TypeWordTranslationMatch:  {"Match words to translations", models.KindMatching},
	models.TypeAudioPictureMatch:     {"Match sounds to pictures", models.KindMatching},
	models.TypeSynonymMatch:          {"Match synonyms", models.KindMatching},
	models.TypeAntonymMatch:          {"Match antonyms", models.KindMatching},
	models.TypeQuestionAnswerMatch:   {"Match questions to answers", models.KindMatching},
	models.TypeWordCategorize:        {"Sort words into groups", models.KindCategorization},
	models.TypePictureCategorize:     {"Sort pictures into groups", models.KindCategorization},
	models.TypeSoundCategorize:       {"Sort sounds into groups", models.KindCategorization},
	models.TypeGrammarCategorize:     {"Sort by grammar category", models.KindCategorization},
	models.TypeSentenceOrder:         {"Put sentences in order", models.KindOrdering},
	models.TypeSentenceBuilder:       {"Build the sentence", models.KindOrdering},
	models.TypeStoryOrder:            {"Put the story in order", models.KindOrdering},
	models.TypeLetterOrder:           {"Spell the word", models.KindOrdering},
	models.TypeTrueFalseStatements:   {"True or false", models.KindTrueFalse},
	models.TypeTrueFalsePicture:      {"True or false with pictures", models.KindTrueFalse},
	models.TypeTrueFalseAudio:        {"True or false with audio", models.KindTrueFalse},
	models.TypeMultipleChoiceText:    {"Multiple choice", models.KindMultipleChoice},
	models.TypeMultipleChoicePicture: {"Multiple choice with pictures", models.KindMultipleChoice},
	models.TypeMultipleChoiceAudio:   {"Multiple choice with audio", models.KindMultipleChoice},
	models.TypeListenAndChoose:       {"Listen and choose", models.KindMultipleChoice},
	models.TypeOddOneOut:             {"Odd one out", models.KindMultipleChoice},
	models.TypeMultiSelect:           {"Select all that apply", models.KindMultipleChoice},
	models.TypeDialoguePlayer:        {"Dialogue", models.KindSequence},
	models.TypeSongPlayer:            {"Song", models.KindSequence},
	models.TypeStoryReader:           {"Story", models.KindSequence},
	models.TypeLetterDecomposition:   {"Letter by letter", models.KindSequence},
	models.TypeSyllableDecomposition: {"Syllable by syllable", models.KindSequence},
	models.TypePronunciationDrill:    {"Pronunciation drill", models.KindSequence},
	models.TypeVocabularyFlashcards:  {"Vocabulary flashcards", models.KindSequence},
	models.TypeMemoryPairs:           {"Memory pairs", models.KindMatching},
	models.TypeMissingLetter:         {"Missing letter", models.KindFillBlank},
	models.TypePictureLabeling:       {"Label the picture", models.KindMatching},
}

// Lookup returns the descriptor for typeID. It is total: ids outside the registry get
// an explicit unsupported descriptor.
func Lookup(typeID models.ExerciseTypeID) Descriptor {
	e, ok := entries[typeID]
	if !ok {
		return Descriptor{
			TypeID:    typeID,
			Name:      "Unsupported exercise",
			Kind:      models.KindUnsupported,
			Supported: false,
			Fields:    []FieldSpec{},
		}
	}
	fields := kindFields[e.kind]
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return Descriptor{
		TypeID:    typeID,
		Name:      e.name,
		Kind:      e.kind,
		Supported: true,
		Fields:    out,
	}
}

// IsRegistered reports whether typeID belongs to the registry.
func IsRegistered(typeID models.ExerciseTypeID) bool {
	_, ok := entries[typeID]
	return ok
}

// All returns every registered descriptor ordered by type id.
func All() []Descriptor {
	ids := TypeIDs()
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, Lookup(id))
	}
	return out
}

// TypeIDs returns the registered type ids in ascending order.
func TypeIDs() []models.ExerciseTypeID {
	ids := make([]models.ExerciseTypeID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
