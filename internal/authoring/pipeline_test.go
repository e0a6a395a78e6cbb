package authoring

import (
	"encoding/json"
	"testing"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	catDog = `{"sentence":"The ___ barks.","choices":[{"id":"a","text":"cat"},{"id":"b","text":"dog"}],"correctAnswer":"dog"}`
	sunSky = `{"sentence":"The ___ is hot.","choices":[{"id":"a","text":"sun"},{"id":"b","text":"ice"}],"correctAnswer":"sun","hint":"look up"}`
	broken = "{\n  \"sentence\": \"x\",\n  \"choices\": [\n}"
)

func TestPipeline_LoadSplitsArray(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Load("[" + catDog + "," + sunSky + "]")

	docs := p.Documents()
	require.Len(t, docs, 2)
	for i, d := range docs {
		assert.Equal(t, i, d.Index)
		assert.True(t, d.Valid())
		assert.Nil(t, d.Err)
	}
	assert.Contains(t, docs[0].Text, "\n  \"sentence\"")
	assert.NotEqual(t, docs[0].Revision, docs[1].Revision)
}

func TestPipeline_BrokenDocumentDoesNotBlockOthers(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Add(catDog)
	bad := p.Add(broken)
	p.Add(sunSky)

	require.NotNil(t, bad.Err)
	assert.Equal(t, 1, bad.Err.Index)
	assert.Equal(t, 4, bad.Err.Line)
	assert.True(t, apperrors.IsContentParse(bad.Err))

	docs := p.Documents()
	assert.True(t, docs[0].Valid())
	assert.False(t, docs[1].Valid())
	assert.True(t, docs[2].Valid())

	// Editing a sibling still works while one document is broken.
	updated, err := p.Update(2, catDog)
	require.NoError(t, err)
	assert.True(t, updated.Valid())

	_, err = p.Payload()
	require.Error(t, err)
	assert.True(t, apperrors.IsContentParse(err))
	_, err = p.Contents()
	assert.Error(t, err)
}

func TestPipeline_CombinedFallsBackToRawText(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Add(catDog)
	p.Add(broken)

	combined := p.Combined()
	assert.Contains(t, combined, catDog)
	assert.Contains(t, combined, broken)
	assert.False(t, json.Valid([]byte(combined)))

	_, err := p.Update(1, sunSky)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(p.Combined())))
}

func TestPipeline_PayloadIsCanonicalAndKeepsUnknownFields(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Add(catDog)
	p.Add(sunSky)

	payload, err := p.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, "["+catDog+","+sunSky+"]", string(payload))
	assert.Contains(t, string(payload), "\n  {\n    \"sentence\"")
	assert.Contains(t, string(payload), "\"hint\": \"look up\"")
	assert.Equal(t, string(payload), p.Combined())

	// Loading the payload back gives the same payload.
	again := NewPipeline(models.TypeWordFillBlank)
	again.Load(string(payload))
	repeat, err := again.Payload()
	require.NoError(t, err)
	assert.Equal(t, string(payload), string(repeat))
}

func TestPipeline_RemoveReindexes(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Add(catDog)
	p.Add(broken)
	third := p.Add(sunSky)

	require.NoError(t, p.Remove(0))
	docs := p.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, 0, docs[0].Err.Index)
	assert.Equal(t, 1, docs[1].Index)
	assert.Equal(t, third.Revision, docs[1].Revision)
	assert.NotEqual(t, third.Identity(), docs[1].Identity())

	assert.ErrorIs(t, p.Remove(5), ErrIndexOutOfRange)
	_, err := p.Update(-1, catDog)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = p.Document(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPipeline_UpdateBumpsRevision(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	first := p.Add(catDog)

	second, err := p.Update(0, catDog)
	require.NoError(t, err)
	assert.Greater(t, second.Revision, first.Revision)
	assert.NotEqual(t, first.Identity(), second.Identity())
}

func TestPipeline_LoadKeepsNonArrayText(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank)
	p.Load("[{ not json")

	docs := p.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "[{ not json", docs[0].Text)
	assert.NotNil(t, docs[0].Err)

	p.Load("  ")
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "[]", p.Combined())
}

func TestPipeline_ValidatorErrorsAreScopedToDocument(t *testing.T) {
	p := NewPipeline(models.TypeWordFillBlank, WithValidator(validator.NewContentValidator()))

	wrongAnswer := `{"sentence":"x","choices":[{"id":"a","text":"cat"},{"id":"b","text":"dog"}],"correctAnswer":"bird"}`
	p.Add(catDog)
	bad := p.Add(wrongAnswer)

	require.NotNil(t, bad.Err)
	assert.Contains(t, bad.Err.Reason, "does not match any choice")
	assert.Zero(t, bad.Err.Line)
	assert.True(t, p.Documents()[0].Valid())
}

func TestPipeline_UnsupportedTypeStillCombines(t *testing.T) {
	p := NewPipeline(999)
	p.Load(`[{"whatever": 1}]`)

	docs := p.Documents()
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Valid())
	assert.Equal(t, models.KindUnsupported, docs[0].Content.Kind())
	assert.JSONEq(t, `[{"whatever": 1}]`, p.Combined())
}
