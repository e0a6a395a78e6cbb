package schema

import (
	"testing"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = map[models.ExerciseKind]string{
	models.KindFillBlank: `{
		"instructions": "Pick the word",
		"sentence": "The ___ barks.",
		"choices": [{"id": "a", "text": "cat"}, {"id": "b", "text": "dog", "imageUrl": "https://cdn.example.com/dog.png"}],
		"correctAnswer": "dog",
		"audioUrl": "https://cdn.example.com/dog.mp3"
	}`,
	models.KindMultiBlank: `{
		"text": "I ___ to school and she ___ home.",
		"choices": [{"id": "c1", "text": "go"}, {"id": "c2", "text": "walks"}],
		"blanks": [{"id": "b1", "answers": ["go"]}, {"id": "b2", "answers": ["walks", "goes"]}]
	}`,
	models.KindMatching: `{
		"sources": [{"id": "s1", "text": "dog"}, {"id": "s2", "text": "cat"}],
		"targets": [{"id": "t1", "text": "perro"}, {"id": "t2", "text": "gato"}],
		"pairs": [{"sourceId": "s1", "targetId": "t1"}, {"sourceId": "s2", "targetId": "t2"}]
	}`,
	models.KindCategorization: `{
		"categories": [{"id": "fruit", "name": "Fruit"}, {"id": "animal", "name": "Animal", "imageUrl": "https://cdn.example.com/zoo.png"}],
		"items": [{"id": "i1", "text": "apple", "categoryId": "fruit"}, {"id": "i2", "text": "horse", "categoryId": "animal"}]
	}`,
	models.KindOrdering: `{
		"items": [{"id": "w1", "text": "I"}, {"id": "w2", "text": "like"}, {"id": "w3", "text": "tea"}],
		"correctOrder": ["w1", "w2", "w3"]
	}`,
	models.KindTrueFalse: `{
		"statements": [{"id": "s1", "text": "Snow is white", "answer": true}, {"id": "s2", "text": "Fire is cold", "answer": false}]
	}`,
	models.KindMultipleChoice: `{
		"question": "Which are colors?",
		"options": [{"id": "o1", "text": "red"}, {"id": "o2", "text": "blue"}, {"id": "o3", "text": "table"}],
		"correctAnswers": ["o1", "o2"],
		"multipleCorrect": true
	}`,
	models.KindSequence: `{
		"title": "At the cafe",
		"steps": [
			{"id": "1", "text": "Hello!", "speaker": "Ana", "audioUrl": "https://cdn.example.com/1.mp3"},
			{"id": "2", "text": "Hi!", "speaker": "Ben", "durationMs": 1500}
		]
	}`,
}

func TestLookup_IsTotal(t *testing.T) {
	tests := []struct {
		name      string
		typeID    models.ExerciseTypeID
		supported bool
		kind      models.ExerciseKind
	}{
		{"first registered", models.TypeWordFillBlank, true, models.KindFillBlank},
		{"ordering", models.TypeLetterOrder, true, models.KindOrdering},
		{"last registered", models.TypePictureLabeling, true, models.KindMatching},
		{"zero", 0, false, models.KindUnsupported},
		{"negative", -7, false, models.KindUnsupported},
		{"out of range", 999, false, models.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := Lookup(tt.typeID)
			assert.Equal(t, tt.typeID, desc.TypeID)
			assert.Equal(t, tt.supported, desc.Supported)
			assert.Equal(t, tt.kind, desc.Kind)
			assert.NotNil(t, desc.Fields)
		})
	}
}

func TestRegistry_CoversFortyTypes(t *testing.T) {
	ids := TypeIDs()
	require.Len(t, ids, 40)
	for i, id := range ids {
		assert.Equal(t, models.ExerciseTypeID(i+1), id)
	}
	assert.Len(t, All(), 40)
}

func TestRegistry_EveryTypeDecodesAndBuilds(t *testing.T) {
	for _, id := range TypeIDs() {
		desc := Lookup(id)
		raw, ok := fixtures[desc.Kind]
		require.True(t, ok, "no fixture for kind %s (type %d)", desc.Kind, id)

		content, err := Parse(id, []byte(raw))
		require.NoError(t, err, "type %d", id)
		assert.Equal(t, desc.Kind, content.Kind(), "type %d", id)

		_, err = engine.Build(content, engine.ForType(id))
		if desc.Kind.Interactive() {
			assert.NoError(t, err, "type %d", id)
		} else {
			assert.ErrorIs(t, err, engine.ErrNotInteractive, "type %d", id)
		}
	}
}

func TestStringify_RoundTrip(t *testing.T) {
	for _, id := range TypeIDs() {
		raw := fixtures[Lookup(id).Kind]

		content, err := Parse(id, []byte(raw))
		require.NoError(t, err)
		out, err := Stringify(content)
		require.NoError(t, err)

		assert.JSONEq(t, raw, string(out), "type %d", id)
	}
}

func TestStringify_KeepsAuthorFields(t *testing.T) {
	tests := []struct {
		name   string
		typeID models.ExerciseTypeID
		raw    string
	}{
		{
			name:   "unknown top level field and explicit zero values",
			typeID: models.TypeMultipleChoiceText,
			raw: `{
				"instructions": "",
				"question": "Which one barks?",
				"hint": "it woofs",
				"options": [{"id": "o1", "text": "dog"}, {"id": "o2", "text": "cat"}],
				"correctAnswers": ["o1"],
				"multipleCorrect": false
			}`,
		},
		{
			name:   "unknown nested fields",
			typeID: models.TypeWordFillBlank,
			raw: `{
				"sentence": "The ___ barks & <bites>.",
				"choices": [{"id": "a", "text": "dog", "note": "answer"}, {"id": "b", "text": "cat"}],
				"correctAnswer": "dog",
				"meta": {"author": "kim", "tags": ["animals"]}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := Parse(tt.typeID, []byte(tt.raw))
			require.NoError(t, err)

			out, err := Stringify(content)
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(out))

			again, err := Parse(tt.typeID, out)
			require.NoError(t, err)
			repeat, err := Stringify(again)
			require.NoError(t, err)
			assert.Equal(t, string(out), string(repeat))
		})
	}
}

func TestStringify_KeepsKeyOrderAndHTML(t *testing.T) {
	content, err := Parse(models.TypeWordFillBlank, []byte(`{"correctAnswer":"a","hint":"x","sentence":"<b>___</b>","choices":[]}`))
	require.NoError(t, err)

	out, err := Stringify(content)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"correctAnswer\": \"a\",\n  \"hint\": \"x\",\n  \"sentence\": \"<b>___</b>\",\n  \"choices\": []\n}", string(out))
}

func TestStringify_BuiltContentHasNoSource(t *testing.T) {
	out, err := Stringify(&models.TrueFalseContent{Statements: []models.Statement{{ID: "s1", Text: "Snow is white", Answer: true}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"statements":[{"id":"s1","text":"Snow is white","answer":true}]}`, string(out))
}

func TestStringify_UsesTwoSpaceIndent(t *testing.T) {
	content, err := Parse(models.TypeSentenceOrder, []byte(`{"items":[],"correctOrder":[]}`))
	require.NoError(t, err)

	out, err := Stringify(content)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"items\": [],\n  \"correctOrder\": []\n}", string(out))
}

func TestParse_UnsupportedTypeIsInert(t *testing.T) {
	raw := `{"anything": [1, 2, 3], "nested": {"x": true}}`

	content, err := Parse(999, []byte(raw))
	require.NoError(t, err)

	unsupported, ok := content.(*models.UnsupportedContent)
	require.True(t, ok)
	assert.Equal(t, models.ExerciseTypeID(999), unsupported.TypeID)
	assert.Equal(t, models.KindUnsupported, content.Kind())

	out, err := Stringify(content)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	err = Check(999)
	assert.True(t, apperrors.IsUnsupportedType(err))
	assert.NoError(t, Check(models.TypeMemoryPairs))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantSyntax bool
		line       int
	}{
		{"empty", "   ", false, 0},
		{"array", `[1, 2]`, false, 0},
		{"truncated", "{\n  \"sentence\": \"x\",\n  \"choices\": [", true, 3},
		{"wrong field type", "{\n  \"sentence\": 12\n}", true, 2},
		{"garbage", "{\n  oops\n}", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(models.TypeWordFillBlank, []byte(tt.raw))
			require.Error(t, err)

			syn, ok := err.(*SyntaxError)
			assert.Equal(t, tt.wantSyntax, ok)
			if ok {
				line, _ := Position([]byte(tt.raw), syn.Offset)
				assert.Equal(t, tt.line, line)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	raw := []byte("ab\ncd\nef")

	line, col := Position(raw, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = Position(raw, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, _ = Position(raw, 100)
	assert.Equal(t, 3, line)
}
