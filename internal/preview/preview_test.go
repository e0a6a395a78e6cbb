package preview

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

type noopClock struct{}

func (noopClock) AfterFunc(time.Duration, func()) sequencer.Timer { return noopTimer{} }

func parse(t *testing.T, typeID models.ExerciseTypeID, raw string) models.Content {
	t.Helper()
	content, err := schema.Parse(typeID, []byte(raw))
	require.NoError(t, err)
	return content
}

const fillBlankDoc = `{"sentence":"The ___ barks.","choices":[{"id":"a","text":"cat"},{"id":"b","text":"dog"}],"correctAnswer":"dog"}`

func TestPreview_SameIdentityKeepsSession(t *testing.T) {
	p := New(Options{})
	content := parse(t, models.TypeWordFillBlank, fillBlankDoc)
	id := models.ContentIdentity{Document: 0, Revision: 1}

	session, err := p.Show(models.TypeWordFillBlank, content, id)
	require.NoError(t, err)
	interaction := session.(*InteractionSession)
	_, err = interaction.Place(engine.BlankSlotID, "b")
	require.NoError(t, err)

	again, err := p.Show(models.TypeWordFillBlank, content, id)
	require.NoError(t, err)
	assert.Same(t, session, again)
	assert.Equal(t, engine.StatusSolved, again.Snapshot().Evaluation.Status)
}

func TestPreview_NewIdentityResetsState(t *testing.T) {
	p := New(Options{})
	content := parse(t, models.TypeWordFillBlank, fillBlankDoc)

	_, err := p.Show(models.TypeWordFillBlank, content, models.ContentIdentity{Document: 0, Revision: 1})
	require.NoError(t, err)
	interaction, err := p.Interaction()
	require.NoError(t, err)
	_, err = interaction.Place(engine.BlankSlotID, "a")
	require.NoError(t, err)

	session, err := p.Show(models.TypeWordFillBlank, content, models.ContentIdentity{Document: 0, Revision: 2})
	require.NoError(t, err)

	snap := session.Snapshot()
	assert.Empty(t, snap.Placements)
	assert.Len(t, snap.Pool, 2)
	assert.Equal(t, engine.StatusIncomplete, snap.Evaluation.Status)
	assert.Equal(t, uint64(2), snap.Identity.Revision)
}

func TestPreview_UnsupportedTypeRendersPlaceholder(t *testing.T) {
	p := New(Options{})
	content := parse(t, 999, `{"mystery": true}`)

	var session Session
	assert.NotPanics(t, func() {
		var err error
		session, err = p.Show(999, content, models.ContentIdentity{Revision: 1})
		require.NoError(t, err)
	})

	_, ok := session.(*PlaceholderSession)
	require.True(t, ok)
	snap := session.Snapshot()
	assert.Equal(t, models.KindUnsupported, snap.Kind)
	assert.NotEmpty(t, snap.Placeholder)
	assert.Nil(t, snap.Evaluation)

	_, err := p.Interaction()
	assert.ErrorIs(t, err, ErrWrongSession)
}

func TestPreview_SequenceTeardownMakesCuesStale(t *testing.T) {
	p := New(Options{Sequencer: sequencer.Options{Clock: noopClock{}}, Autoplay: true})
	doc := `{"steps":[{"id":"1","text":"Hello","audioUrl":"https://cdn.example.com/1.mp3"},{"id":"2","text":"Bye","audioUrl":"https://cdn.example.com/2.mp3"}]}`
	content := parse(t, models.TypeDialoguePlayer, doc)

	_, err := p.Show(models.TypeDialoguePlayer, content, models.ContentIdentity{Revision: 1})
	require.NoError(t, err)
	first, err := p.Sequence()
	require.NoError(t, err)
	cue := first.Snapshot().Sequence.Pending
	require.NotNil(t, cue)

	_, err = p.Show(models.TypeDialoguePlayer, content, models.ContentIdentity{Revision: 2})
	require.NoError(t, err)
	second, err := p.Sequence()
	require.NoError(t, err)

	assert.False(t, first.Completed(*cue))
	assert.False(t, second.Completed(*cue))
	assert.Equal(t, 0, second.Snapshot().Sequence.Step)
	assert.Equal(t, sequencer.StatePlaying, second.Snapshot().Sequence.State)
}

func TestPreview_ZeroStepSequenceRejected(t *testing.T) {
	p := New(Options{})
	content := parse(t, models.TypeStoryReader, `{"steps":[]}`)

	_, err := p.Show(models.TypeStoryReader, content, models.ContentIdentity{Revision: 1})
	assert.ErrorIs(t, err, sequencer.ErrNoSteps)

	_, err = p.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestPreview_KindMismatchRejected(t *testing.T) {
	p := New(Options{})
	content := parse(t, models.TypeWordFillBlank, fillBlankDoc)

	_, err := p.Show(models.TypeSentenceOrder, content, models.ContentIdentity{Revision: 1})
	assert.Error(t, err)
}
