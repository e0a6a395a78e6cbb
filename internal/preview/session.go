package preview

import (
	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
)

// Session is one live instance of a previewed document.
type Session interface {
	Kind() models.ExerciseKind
	Identity() models.ContentIdentity
	Snapshot() Snapshot
	Close()
}

// Snapshot is everything needed to render a session.
type Snapshot struct {
	TypeID      models.ExerciseTypeID  `json:"typeId"`
	Name        string                 `json:"name"`
	Kind        models.ExerciseKind    `json:"kind"`
	Identity    models.ContentIdentity `json:"identity"`
	Slots       []engine.Slot          `json:"slots,omitempty"`
	Pool        []engine.Token         `json:"pool,omitempty"`
	Placements  map[string][]string    `json:"placements,omitempty"`
	Evaluation  *engine.Evaluation     `json:"evaluation,omitempty"`
	Sequence    *sequencer.Snapshot    `json:"sequence,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty"`
}

// InteractionSession drives the interaction engine for placement exercises.
type InteractionSession struct {
	typeID models.ExerciseTypeID
	name   string
	kind   models.ExerciseKind
	engine *engine.Engine
}

func (s *InteractionSession) Kind() models.ExerciseKind        { return s.kind }
func (s *InteractionSession) Identity() models.ContentIdentity { return s.engine.Identity() }

func (s *InteractionSession) Place(slotID, tokenID string) (engine.Outcome, error) {
	return s.engine.Place(slotID, tokenID)
}

func (s *InteractionSession) Remove(slotID string) ([]string, error) {
	return s.engine.Remove(slotID)
}

func (s *InteractionSession) RemoveToken(tokenID string) error {
	return s.engine.RemoveToken(tokenID)
}

func (s *InteractionSession) Evaluate() engine.Evaluation {
	return s.engine.Evaluate()
}

func (s *InteractionSession) Retry() []string {
	return s.engine.Retry()
}

func (s *InteractionSession) Reset() {
	s.engine.Reset()
}

func (s *InteractionSession) Snapshot() Snapshot {
	eval := s.engine.Evaluate()
	snap := Snapshot{
		TypeID:     s.typeID,
		Name:       s.name,
		Kind:       s.kind,
		Identity:   s.engine.Identity(),
		Pool:       s.engine.Pool(),
		Placements: s.engine.Placements(),
		Evaluation: &eval,
	}
	if board := s.engine.Board(); board != nil {
		snap.Slots = board.Slots
	}
	return snap
}

func (s *InteractionSession) Close() {
	s.engine.Reset()
}

// SequenceSession drives the sequencer for timed content.
type SequenceSession struct {
	typeID    models.ExerciseTypeID
	name      string
	sequencer *sequencer.Sequencer
}

func (s *SequenceSession) Kind() models.ExerciseKind        { return models.KindSequence }
func (s *SequenceSession) Identity() models.ContentIdentity { return s.sequencer.Identity() }

func (s *SequenceSession) Start() error {
	return s.sequencer.Start()
}

func (s *SequenceSession) Replay() error {
	return s.sequencer.Replay()
}

func (s *SequenceSession) Completed(cue sequencer.Cue) bool {
	return s.sequencer.Completed(cue)
}

func (s *SequenceSession) Failed(cue sequencer.Cue, cause error) error {
	return s.sequencer.Failed(cue, cause)
}

func (s *SequenceSession) Snapshot() Snapshot {
	seq := s.sequencer.Snapshot()
	return Snapshot{
		TypeID:   s.typeID,
		Name:     s.name,
		Kind:     models.KindSequence,
		Identity: s.sequencer.Identity(),
		Sequence: &seq,
	}
}

// Close stops playback so in-flight media signals for this session go stale.
func (s *SequenceSession) Close() {
	s.sequencer.Stop()
}

// PlaceholderSession is the inert stand-in for types outside the registry.
type PlaceholderSession struct {
	typeID   models.ExerciseTypeID
	name     string
	identity models.ContentIdentity
}

func (s *PlaceholderSession) Kind() models.ExerciseKind        { return models.KindUnsupported }
func (s *PlaceholderSession) Identity() models.ContentIdentity { return s.identity }

func (s *PlaceholderSession) Snapshot() Snapshot {
	return Snapshot{
		TypeID:      s.typeID,
		Name:        s.name,
		Kind:        models.KindUnsupported,
		Identity:    s.identity,
		Placeholder: "This exercise type cannot be previewed.",
	}
}

func (s *PlaceholderSession) Close() {}
