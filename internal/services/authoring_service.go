package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/authoring"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/cache"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/dispatch"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/google/uuid"
)

const draftKeyPrefix = "draft:"

type AuthoringConfig struct {
	AutosaveTTL time.Duration
	QueueSize   int
	StepDelay   time.Duration
	StepGap     time.Duration
	Autoplay    bool
	// Clock drives sequencer timers. Defaults to wall-clock time.
	Clock sequencer.Clock
}

// draftState is the autosaved form of a draft.
type draftState struct {
	ID            string                `json:"id"`
	AuthorID      string                `json:"authorId"`
	ActivityID    uint                  `json:"activityId,omitempty"`
	Version       int                   `json:"version,omitempty"`
	Title         string                `json:"title"`
	TypeID        models.ExerciseTypeID `json:"typeId"`
	LessonID      uint                  `json:"lessonId"`
	SequenceOrder int                   `json:"sequenceOrder"`
	Texts         []string              `json:"texts"`
	Dirty         bool                  `json:"dirty"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// draft is one author's open activity. Every field below queue is owned by the queue
// goroutine.
type draft struct {
	queue  *dispatch.Queue
	cancel context.CancelFunc

	state        draftState
	pipeline     *authoring.Pipeline
	preview      *preview.Preview
	previewIndex int
	lastSaveErr  error
	// edits counts document mutations; a save only clears Dirty if none raced it.
	edits uint64
}

type authoringService struct {
	activities ActivityService
	cache      cache.CacheService
	validator  *validator.Validator
	logger     *slog.Logger
	opLogger   *ServiceLogger
	config     AuthoringConfig

	mu     sync.RWMutex
	drafts map[string]*draft
}

// NewAuthoringService creates the draft service. drafts is optional; without it drafts
// live in memory only.
func NewAuthoringService(activities ActivityService, drafts cache.CacheService, validator *validator.Validator, logger *slog.Logger, config AuthoringConfig) AuthoringService {
	if logger == nil {
		logger = slog.Default()
	}
	if config.AutosaveTTL <= 0 {
		config.AutosaveTTL = 24 * time.Hour
	}
	return &authoringService{
		activities: activities,
		cache:      drafts,
		validator:  validator,
		logger:     logger,
		opLogger:   NewServiceLogger(logger, LogConfig{Service: "authoring", Component: "service"}),
		config:     config,
		drafts:     make(map[string]*draft),
	}
}

// ===== DRAFT LIFECYCLE =====

func (s *authoringService) OpenDraft(ctx context.Context, req *OpenDraftRequest, authorID string) (resp *DraftResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "open_draft", authorID)
	defer func() {
		id := ""
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "draft", err)
	}()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	state := draftState{
		ID:            uuid.NewString(),
		AuthorID:      authorID,
		Title:         req.Title,
		TypeID:        req.TypeID,
		LessonID:      req.LessonID,
		SequenceOrder: req.SequenceOrder,
		UpdatedAt:     time.Now(),
	}
	content := ""

	if req.ActivityID != nil {
		activity, err := s.activities.GetByID(ctx, *req.ActivityID)
		if err != nil {
			return nil, err
		}
		state.ActivityID = activity.ID
		state.Version = activity.Version
		state.Title = activity.Title
		state.TypeID = activity.TypeID
		state.LessonID = activity.LessonID
		state.SequenceOrder = activity.SequenceOrder
		content = string(activity.ContentJSON)
	} else if err = validateNewDraft(req); err != nil {
		return nil, err
	}

	d := s.newDraft(state)
	err = d.queue.Do(ctx, func() error {
		d.pipeline.Load(content)
		d.state.Texts = texts(d.pipeline)
		return nil
	})
	if err != nil {
		d.close()
		return nil, err
	}

	s.mu.Lock()
	s.drafts[state.ID] = d
	s.mu.Unlock()

	return s.respond(ctx, d)
}

func (s *authoringService) GetDraft(ctx context.Context, draftID, authorID string) (*DraftResponse, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, d)
}

// SaveDraft writes the canonical payload through the activity service. A failed save
// keeps the draft dirty and is reported to the author.
func (s *authoringService) SaveDraft(ctx context.Context, draftID, authorID string) (resp *DraftResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "save_draft", authorID)
	defer func() { op.LogResult(draftID, "draft", err) }()

	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	var (
		state   draftState
		payload []byte
		edits   uint64
	)
	err = s.run(ctx, d, func() error {
		var perr error
		if payload, perr = d.pipeline.Payload(); perr != nil {
			return perr
		}
		state = d.state
		edits = d.edits
		return nil
	})
	if err != nil {
		return nil, err
	}

	content := string(payload)
	var saved *ActivityResponse
	if state.ActivityID == 0 {
		saved, err = s.activities.Create(ctx, &CreateActivityRequest{
			Title:         state.Title,
			SequenceOrder: state.SequenceOrder,
			TypeID:        state.TypeID,
			LessonID:      state.LessonID,
			ContentJSON:   content,
		}, authorID)
	} else {
		saved, err = s.activities.Update(ctx, state.ActivityID, &UpdateActivityRequest{
			Title:         &state.Title,
			SequenceOrder: &state.SequenceOrder,
			ContentJSON:   &content,
			Version:       state.Version,
		}, authorID)
	}

	saveErr := err
	err = s.run(context.WithoutCancel(ctx), d, func() error {
		d.lastSaveErr = saveErr
		if saveErr == nil {
			d.state.ActivityID = saved.ID
			d.state.Version = saved.Version
			d.state.Dirty = d.edits != edits
		}
		state = d.state
		return nil
	})
	if err != nil {
		if saveErr != nil {
			return nil, saveErr
		}
		return nil, err
	}
	s.autosave(ctx, state)

	if saveErr != nil {
		return nil, saveErr
	}
	if state.Dirty {
		s.logger.Info("Draft edited while saving; newer edits remain unsaved",
			"draft_id", draftID, "activity_id", state.ActivityID)
	}
	return s.respond(ctx, d)
}

// CloseDraft discards a draft. Unsaved changes block the close unless force is set.
func (s *authoringService) CloseDraft(ctx context.Context, draftID, authorID string, force bool) error {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return err
	}

	var (
		dirty   bool
		lastErr error
	)
	err = s.run(ctx, d, func() error {
		dirty = d.state.Dirty
		lastErr = d.lastSaveErr
		return nil
	})
	if err != nil {
		return err
	}

	if dirty && !force {
		details := map[string]interface{}{"draft_id": draftID}
		if lastErr != nil {
			details["last_save_error"] = lastErr.Error()
		}
		return NewBusinessRuleError("unsaved_changes", "draft has unsaved changes", details)
	}

	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()
	d.close()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, draftKeyPrefix+draftID); err != nil {
			s.logger.Warn("Failed to drop autosaved draft", "draft_id", draftID, "error", err)
		}
	}
	return nil
}

func (s *authoringService) Shutdown() {
	s.mu.Lock()
	drafts := s.drafts
	s.drafts = make(map[string]*draft)
	s.mu.Unlock()

	for _, d := range drafts {
		d.close()
	}
}

// ===== DOCUMENT EDITING =====

func (s *authoringService) SetContent(ctx context.Context, draftID, authorID, contentJSON string) (*DraftResponse, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	err = s.edit(ctx, d, func() error {
		d.pipeline.Load(contentJSON)
		d.preview.Close()
		d.previewIndex = -1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, d)
}

func (s *authoringService) AddDocument(ctx context.Context, draftID, authorID, text string) (*DocumentResponse, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	var doc authoring.Document
	err = s.edit(ctx, d, func() error {
		doc = d.pipeline.Add(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documentResponse(doc), nil
}

func (s *authoringService) UpdateDocument(ctx context.Context, draftID, authorID string, index int, text string) (*DocumentResponse, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	var doc authoring.Document
	err = s.edit(ctx, d, func() error {
		var uerr error
		if doc, uerr = d.pipeline.Update(index, text); uerr != nil {
			return indexError(uerr, index)
		}
		if d.previewIndex == index {
			s.refreshPreview(d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documentResponse(doc), nil
}

// RemoveDocument deletes a document. Later documents move up one position and a
// preview of any of them is rebuilt.
func (s *authoringService) RemoveDocument(ctx context.Context, draftID, authorID string, index int) (*DraftResponse, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	err = s.edit(ctx, d, func() error {
		if rerr := d.pipeline.Remove(index); rerr != nil {
			return indexError(rerr, index)
		}
		switch {
		case d.previewIndex == index:
			d.preview.Close()
			d.previewIndex = -1
		case d.previewIndex > index:
			d.previewIndex--
			s.refreshPreview(d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, d)
}

// ===== PREVIEW =====

func (s *authoringService) ShowPreview(ctx context.Context, draftID, authorID string, index int) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		doc, err := d.pipeline.Document(index)
		if err != nil {
			return indexError(err, index)
		}
		if !doc.Valid() {
			return doc.Err
		}
		if _, err := d.preview.Show(d.pipeline.TypeID(), doc.Content, doc.Identity()); err != nil {
			return err
		}
		d.previewIndex = index
		return nil
	})
}

func (s *authoringService) GetPreview(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		_, err := d.preview.Session()
		return err
	})
}

func (s *authoringService) Place(ctx context.Context, draftID, authorID string, req *PlaceRequest) (*PlacementResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var outcome engine.Outcome
	snap, err := s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		interaction, err := d.preview.Interaction()
		if err != nil {
			return err
		}
		outcome, err = interaction.Place(req.SlotID, req.TokenID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PlacementResponse{Outcome: outcome, Snapshot: *snap}, nil
}

func (s *authoringService) RemovePlacement(ctx context.Context, draftID, authorID string, req *RemovePlacementRequest) (*preview.Snapshot, error) {
	if req.SlotID == "" && req.TokenID == "" {
		return nil, NewValidationError("slotId", "slotId or tokenId is required", nil)
	}

	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		interaction, err := d.preview.Interaction()
		if err != nil {
			return err
		}
		if req.TokenID != "" {
			return interaction.RemoveToken(req.TokenID)
		}
		_, err = interaction.Remove(req.SlotID)
		return err
	})
}

func (s *authoringService) Retry(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		interaction, err := d.preview.Interaction()
		if err != nil {
			return err
		}
		interaction.Retry()
		return nil
	})
}

func (s *authoringService) Reset(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		interaction, err := d.preview.Interaction()
		if err != nil {
			return err
		}
		interaction.Reset()
		return nil
	})
}

func (s *authoringService) Play(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		seq, err := d.preview.Sequence()
		if err != nil {
			return err
		}
		return seq.Start()
	})
}

func (s *authoringService) Replay(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		seq, err := d.preview.Sequence()
		if err != nil {
			return err
		}
		return seq.Replay()
	})
}

// MediaEnded reports that the client finished playing cue. Stale cues are ignored.
func (s *authoringService) MediaEnded(ctx context.Context, draftID, authorID string, cue sequencer.Cue) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		seq, err := d.preview.Sequence()
		if err != nil {
			return err
		}
		if !seq.Completed(cue) {
			s.logger.Debug("Ignored stale media end", "draft_id", draftID, "step", cue.Step, "generation", cue.Generation)
		}
		return nil
	})
}

// MediaFailed reports a client playback failure. Playback continues without audio.
func (s *authoringService) MediaFailed(ctx context.Context, draftID, authorID string, req *MediaFailedRequest) (*preview.Snapshot, error) {
	return s.previewOp(ctx, draftID, authorID, func(d *draft) error {
		seq, err := d.preview.Sequence()
		if err != nil {
			return err
		}
		reason := req.Reason
		if reason == "" {
			reason = "playback failed"
		}
		if perr := seq.Failed(req.Cue, errors.New(reason)); perr != nil {
			s.logger.Info("Preview continues without audio", "draft_id", draftID, "error", perr)
		}
		return nil
	})
}

// ===== HELPERS =====

func (s *authoringService) newDraft(state draftState) *draft {
	ctx, cancel := context.WithCancel(context.Background())
	queue := dispatch.NewQueue(s.config.QueueSize, s.logger.With("draft_id", state.ID))
	queue.Start(ctx)

	typeID := state.TypeID
	d := &draft{
		queue:        queue,
		cancel:       cancel,
		state:        state,
		pipeline:     authoring.NewPipeline(typeID, authoring.WithValidator(s.validator.Content())),
		previewIndex: -1,
	}
	d.preview = preview.New(preview.Options{
		Sequencer: sequencer.Options{
			Clock:     s.config.Clock,
			StepDelay: s.config.StepDelay,
			Gap:       s.config.StepGap,
			Post:      queue.Post,
			Logger:    s.logger.With("draft_id", state.ID),
		},
		Autoplay: s.config.Autoplay,
	})
	return d
}

func (d *draft) close() {
	_ = d.queue.Do(context.Background(), func() error {
		d.preview.Close()
		return nil
	})
	d.queue.Close()
	d.cancel()
}

// lookup finds an open draft, restoring it from the autosave store when it is not in
// memory.
func (s *authoringService) lookup(ctx context.Context, draftID, authorID string) (*draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[draftID]
	s.mu.RUnlock()

	if !ok {
		restored, err := s.restore(ctx, draftID)
		if err != nil {
			return nil, err
		}
		d = restored
	}

	if d.state.AuthorID != authorID {
		return nil, NewPermissionError(authorID, draftID, "draft", "access", "draft belongs to another author")
	}
	return d, nil
}

func (s *authoringService) restore(ctx context.Context, draftID string) (*draft, error) {
	if s.cache == nil {
		return nil, ErrDraftNotFound
	}

	var state draftState
	if err := s.cache.Get(ctx, draftKeyPrefix+draftID, &state); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to restore draft: %w", err)
	}

	d := s.newDraft(state)
	err := d.queue.Do(ctx, func() error {
		for _, text := range state.Texts {
			d.pipeline.Add(text)
		}
		return nil
	})
	if err != nil {
		d.close()
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.drafts[draftID]; ok {
		s.mu.Unlock()
		d.close()
		return existing, nil
	}
	s.drafts[draftID] = d
	s.mu.Unlock()

	s.logger.Info("Restored autosaved draft", "draft_id", draftID, "documents", len(state.Texts))
	return d, nil
}

func (s *authoringService) run(ctx context.Context, d *draft, fn func() error) error {
	err := d.queue.Do(ctx, fn)
	if errors.Is(err, dispatch.ErrClosed) {
		return ErrDraftClosed
	}
	return err
}

// edit runs a document mutation, marks the draft dirty and autosaves it.
func (s *authoringService) edit(ctx context.Context, d *draft, fn func() error) error {
	var state draftState
	err := s.run(ctx, d, func() error {
		if err := fn(); err != nil {
			return err
		}
		d.state.Texts = texts(d.pipeline)
		d.state.Dirty = true
		d.edits++
		d.state.UpdatedAt = time.Now()
		state = d.state
		return nil
	})
	if err != nil {
		return err
	}
	s.autosave(ctx, state)
	return nil
}

func (s *authoringService) autosave(ctx context.Context, state draftState) {
	if s.cache == nil || state.ID == "" {
		return
	}
	if err := s.cache.Set(ctx, draftKeyPrefix+state.ID, state, s.config.AutosaveTTL); err != nil {
		s.logger.Warn("Draft autosave failed", "draft_id", state.ID, "error", err)
	}
}

func (s *authoringService) previewOp(ctx context.Context, draftID, authorID string, fn func(d *draft) error) (*preview.Snapshot, error) {
	d, err := s.lookup(ctx, draftID, authorID)
	if err != nil {
		return nil, err
	}

	var snap preview.Snapshot
	err = s.run(ctx, d, func() error {
		if err := fn(d); err != nil {
			return err
		}
		session, err := d.preview.Session()
		if err != nil {
			return err
		}
		snap = session.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// refreshPreview rebuilds the preview after the previewed document changed. A document
// that no longer parses leaves nothing to preview.
func (s *authoringService) refreshPreview(d *draft) {
	doc, err := d.pipeline.Document(d.previewIndex)
	if err != nil || !doc.Valid() {
		d.preview.Close()
		return
	}
	if _, err := d.preview.Show(d.pipeline.TypeID(), doc.Content, doc.Identity()); err != nil {
		s.logger.Warn("Preview rebuild failed", "draft_id", d.state.ID, "index", d.previewIndex, "error", err)
		d.preview.Close()
	}
}

func (s *authoringService) respond(ctx context.Context, d *draft) (*DraftResponse, error) {
	var resp *DraftResponse
	err := s.run(ctx, d, func() error {
		resp = draftResponse(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func draftResponse(d *draft) *DraftResponse {
	desc := schema.Lookup(d.state.TypeID)
	resp := &DraftResponse{
		ID:            d.state.ID,
		ActivityID:    d.state.ActivityID,
		Version:       d.state.Version,
		Title:         d.state.Title,
		TypeID:        d.state.TypeID,
		TypeName:      desc.Name,
		Supported:     desc.Supported,
		LessonID:      d.state.LessonID,
		SequenceOrder: d.state.SequenceOrder,
		Combined:      d.pipeline.Combined(),
		Dirty:         d.state.Dirty,
		UpdatedAt:     d.state.UpdatedAt,
	}
	for _, doc := range d.pipeline.Documents() {
		resp.Documents = append(resp.Documents, *documentResponse(doc))
	}
	if _, err := d.preview.Session(); err == nil && d.previewIndex >= 0 {
		index := d.previewIndex
		resp.PreviewIndex = &index
	}
	if d.lastSaveErr != nil {
		resp.LastSaveError = d.lastSaveErr.Error()
	}
	return resp
}

func documentResponse(doc authoring.Document) *DocumentResponse {
	return &DocumentResponse{
		Index:    doc.Index,
		Text:     doc.Text,
		Revision: doc.Revision,
		Valid:    doc.Valid(),
		Error:    doc.Err,
	}
}

func texts(p *authoring.Pipeline) []string {
	docs := p.Documents()
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Text)
	}
	return out
}

func indexError(err error, index int) error {
	if errors.Is(err, authoring.ErrIndexOutOfRange) {
		return NewValidationError("index", "no document at this position", index)
	}
	return err
}

func validateNewDraft(req *OpenDraftRequest) error {
	var errs ValidationErrors
	if req.Title == "" {
		errs = append(errs, *NewValidationError("title", "title is required", nil))
	}
	if !schema.IsRegistered(req.TypeID) {
		errs = append(errs, *NewValidationError("typeId", "unknown exercise type", req.TypeID))
	}
	if req.LessonID == 0 {
		errs = append(errs, *NewValidationError("lessonId", "lessonId is required", nil))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
