package sequencer

import (
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

const DefaultStepDelay = 2 * time.Second

var (
	ErrNoSteps   = errors.New("sequence has no steps")
	ErrNotLoaded = errors.New("no sequence loaded")
)

type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StateAdvancing State = "advancing"
	StateComplete  State = "complete"
)

// Cue identifies one playback of one step. Completion signals carrying any other cue
// are stale and ignored.
type Cue struct {
	Identity   models.ContentIdentity `json:"identity"`
	Step       int                    `json:"step"`
	Generation uint64                 `json:"generation"`
	AudioURL   string                 `json:"audioUrl,omitempty"`
}

func (c Cue) matches(other Cue) bool {
	return c.Identity == other.Identity && c.Step == other.Step && c.Generation == other.Generation
}

// Player starts audio playback for a cue. Completion is reported back through
// Sequencer.Completed or Sequencer.Failed.
type Player interface {
	Play(cue Cue) error
}

type PlayerFunc func(cue Cue) error

func (f PlayerFunc) Play(cue Cue) error { return f(cue) }

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	// Player plays audio steps in process. When nil the caller plays the pending cue
	// and reports back.
	Player Player
	Clock  Clock
	// StepDelay completes steps that have no audio and no duration of their own.
	StepDelay time.Duration
	// Gap is the pause between steps spent in the advancing state.
	Gap time.Duration
	// Post routes timer callbacks onto the owner's event queue. Defaults to calling
	// the callback directly.
	Post   func(func()) error
	Logger *slog.Logger
}

type Snapshot struct {
	State      State                  `json:"state"`
	Step       int                    `json:"step"`
	Total      int                    `json:"total"`
	Generation uint64                 `json:"generation"`
	Identity   models.ContentIdentity `json:"identity"`
	Current    *models.SequenceStep   `json:"current,omitempty"`
	Pending    *Cue                   `json:"pending,omitempty"`
	LastError  string                 `json:"lastError,omitempty"`
}

// Sequencer steps through timed content one step at a time. It is not safe for
// concurrent use; timer callbacks are routed through Options.Post.
type Sequencer struct {
	opts Options

	steps      []models.SequenceStep
	identity   models.ContentIdentity
	state      State
	index      int
	generation uint64
	pending    Cue
	timer      Timer
	lastErr    error
}

func New(opts Options) *Sequencer {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.StepDelay <= 0 {
		opts.StepDelay = DefaultStepDelay
	}
	if opts.Post == nil {
		opts.Post = func(fn func()) error {
			fn()
			return nil
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Sequencer{opts: opts, state: StateIdle}
}

// Load replaces the steps and identity and returns to idle. Zero steps are rejected.
func (s *Sequencer) Load(steps []models.SequenceStep, identity models.ContentIdentity) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	s.halt()
	s.steps = append([]models.SequenceStep(nil), steps...)
	s.identity = identity
	s.index = 0
	s.lastErr = nil
	return nil
}

// Start begins playback at step 0 from idle or complete. It does nothing while a
// sequence is already running.
func (s *Sequencer) Start() error {
	if len(s.steps) == 0 {
		return ErrNotLoaded
	}
	if s.state == StatePlaying || s.state == StateAdvancing {
		return nil
	}
	s.generation++
	s.play(0)
	return nil
}

// Replay restarts at step 0 and invalidates every outstanding cue.
func (s *Sequencer) Replay() error {
	if len(s.steps) == 0 {
		return ErrNotLoaded
	}
	s.halt()
	s.lastErr = nil
	s.play(0)
	return nil
}

// Stop returns to idle and invalidates every outstanding cue.
func (s *Sequencer) Stop() {
	s.halt()
	s.index = 0
}

func (s *Sequencer) halt() {
	s.stopTimer()
	s.generation++
	s.state = StateIdle
	s.pending = Cue{}
}

// Completed reports that the media of cue finished. It returns false when the cue is
// stale.
func (s *Sequencer) Completed(cue Cue) bool {
	if s.state != StatePlaying || !s.pending.matches(cue) {
		return false
	}
	s.stopTimer()
	s.advance()
	return true
}

// Failed reports a playback failure for cue. The step falls back to its fixed delay.
// It returns nil when the cue is stale.
func (s *Sequencer) Failed(cue Cue, cause error) error {
	if s.state != StatePlaying || !s.pending.matches(cue) {
		return nil
	}
	err := &apperrors.MediaPlaybackError{URL: cue.AudioURL, Step: cue.Step, Err: cause}
	s.degrade(err)
	return err
}

func (s *Sequencer) degrade(err *apperrors.MediaPlaybackError) {
	s.lastErr = err
	s.opts.Logger.Warn("Media playback failed, continuing without audio",
		"step", err.Step,
		"url", err.URL,
		"error", err.Err)
	s.schedule(s.delayFor(s.steps[s.index]), s.pending, func(cue Cue) {
		s.Completed(cue)
	})
}

func (s *Sequencer) play(i int) {
	s.index = i
	s.state = StatePlaying
	step := s.steps[i]
	s.pending = Cue{Identity: s.identity, Step: i, Generation: s.generation, AudioURL: step.AudioURL}

	if step.AudioURL == "" {
		s.schedule(s.delayFor(step), s.pending, func(cue Cue) {
			s.Completed(cue)
		})
		return
	}

	if s.opts.Player == nil {
		return
	}
	if err := s.opts.Player.Play(s.pending); err != nil {
		s.degrade(&apperrors.MediaPlaybackError{URL: step.AudioURL, Step: i, Err: err})
	}
}

func (s *Sequencer) advance() {
	next := s.index + 1
	if next >= len(s.steps) {
		s.state = StateComplete
		s.pending = Cue{}
		return
	}

	if s.opts.Gap <= 0 {
		s.play(next)
		return
	}

	s.state = StateAdvancing
	s.schedule(s.opts.Gap, s.pending, func(cue Cue) {
		if s.state == StateAdvancing && s.pending.matches(cue) {
			s.play(next)
		}
	})
}

// schedule arms the single pending timer. When it fires, fn runs on the owner's
// queue with the cue it was armed for.
func (s *Sequencer) schedule(d time.Duration, cue Cue, fn func(Cue)) {
	s.stopTimer()
	s.timer = s.opts.Clock.AfterFunc(d, func() {
		if err := s.opts.Post(func() { fn(cue) }); err != nil {
			s.opts.Logger.Debug("Dropped sequencer timer", "step", cue.Step, "error", err)
		}
	})
}

func (s *Sequencer) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) delayFor(step models.SequenceStep) time.Duration {
	if step.DurationMs > 0 {
		return time.Duration(step.DurationMs) * time.Millisecond
	}
	return s.opts.StepDelay
}

func (s *Sequencer) State() State {
	return s.state
}

func (s *Sequencer) Identity() models.ContentIdentity {
	return s.identity
}

// Pending returns the cue awaiting a completion signal.
func (s *Sequencer) Pending() (Cue, bool) {
	if s.state != StatePlaying {
		return Cue{}, false
	}
	return s.pending, true
}

func (s *Sequencer) Snapshot() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Step:       s.index,
		Total:      len(s.steps),
		Generation: s.generation,
		Identity:   s.identity,
	}
	if s.state == StatePlaying || s.state == StateAdvancing {
		step := s.steps[s.index]
		snap.Current = &step
	}
	if cue, ok := s.Pending(); ok {
		snap.Pending = &cue
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
