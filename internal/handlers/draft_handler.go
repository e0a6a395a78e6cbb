package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/preview"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// DraftHandler exposes the authoring session: editing documents, previewing them and
// relaying media playback signals from the client.
type DraftHandler struct {
	BaseHandler
	service services.AuthoringService
}

func NewDraftHandler(service services.AuthoringService, logger utils.Logger) *DraftHandler {
	return &DraftHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// OpenDraft opens an authoring draft
// @Summary Open draft
// @Description Opens a draft for an existing activity, or for a new one when activityId is omitted
// @Tags drafts
// @Accept json
// @Produce json
// @Param draft body services.OpenDraftRequest true "Draft target"
// @Success 201 {object} services.DraftResponse
// @Router /drafts [post]
func (h *DraftHandler) OpenDraft(c *gin.Context) {
	h.LogRequest(c, "Opening draft")

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.OpenDraftRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.service.OpenDraft(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, draft)
}

// GetDraft returns a draft
// @Summary Get draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} services.DraftResponse
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	h.withDraft(c, func(draftID, userID string) (interface{}, error) {
		return h.service.GetDraft(c.Request.Context(), draftID, userID)
	})
}

// SaveDraft persists the draft's combined content
// @Summary Save draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} services.DraftResponse
// @Failure 422 {object} ErrorResponse "A document does not parse"
// @Failure 502 {object} ErrorResponse "The activity store rejected the save"
// @Router /drafts/{id}/save [post]
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	h.LogRequest(c, "Saving draft", "draft_id", c.Param("id"))
	h.withDraft(c, func(draftID, userID string) (interface{}, error) {
		return h.service.SaveDraft(c.Request.Context(), draftID, userID)
	})
}

// CloseDraft closes a draft
// @Summary Close draft
// @Description Closing a draft with unsaved changes requires force=true
// @Tags drafts
// @Param id path string true "Draft ID"
// @Param force query bool false "Discard unsaved changes"
// @Success 204
// @Router /drafts/{id} [delete]
func (h *DraftHandler) CloseDraft(c *gin.Context) {
	draftID := ParseStringIDParam(c, "id")
	if draftID == "" {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.service.CloseDraft(c.Request.Context(), draftID, userID, force); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetContent replaces every document with the split of a combined JSON array
// @Summary Set draft content
// @Tags drafts
// @Accept json
// @Param id path string true "Draft ID"
// @Param content body services.ContentRequest true "Combined content"
// @Success 200 {object} services.DraftResponse
// @Router /drafts/{id}/content [put]
func (h *DraftHandler) SetContent(c *gin.Context) {
	var req services.ContentRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.SetContent(c.Request.Context(), draftID, userID, req.ContentJSON)
	})
}

// AddDocument appends a document
// @Summary Add document
// @Tags drafts
// @Accept json
// @Param id path string true "Draft ID"
// @Param document body services.DocumentRequest true "Document text"
// @Success 200 {object} services.DocumentResponse
// @Router /drafts/{id}/documents [post]
func (h *DraftHandler) AddDocument(c *gin.Context) {
	var req services.DocumentRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.AddDocument(c.Request.Context(), draftID, userID, req.Text)
	})
}

// UpdateDocument replaces a document's text
// @Summary Update document
// @Tags drafts
// @Accept json
// @Param id path string true "Draft ID"
// @Param index path int true "Document index"
// @Param document body services.DocumentRequest true "Document text"
// @Success 200 {object} services.DocumentResponse
// @Router /drafts/{id}/documents/{index} [put]
func (h *DraftHandler) UpdateDocument(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	var req services.DocumentRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.UpdateDocument(c.Request.Context(), draftID, userID, index, req.Text)
	})
}

// RemoveDocument deletes a document
// @Summary Remove document
// @Tags drafts
// @Param id path string true "Draft ID"
// @Param index path int true "Document index"
// @Success 200 {object} services.DraftResponse
// @Router /drafts/{id}/documents/{index} [delete]
func (h *DraftHandler) RemoveDocument(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	h.withDraft(c, func(draftID, userID string) (interface{}, error) {
		return h.service.RemoveDocument(c.Request.Context(), draftID, userID, index)
	})
}

// ShowPreview previews a document
// @Summary Show preview
// @Tags preview
// @Param id path string true "Draft ID"
// @Param index path int true "Document index"
// @Success 200 {object} preview.Snapshot
// @Router /drafts/{id}/documents/{index}/preview [post]
func (h *DraftHandler) ShowPreview(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	h.withDraft(c, func(draftID, userID string) (interface{}, error) {
		return h.service.ShowPreview(c.Request.Context(), draftID, userID, index)
	})
}

// GetPreview returns the current preview state
// @Summary Get preview
// @Tags preview
// @Param id path string true "Draft ID"
// @Success 200 {object} preview.Snapshot
// @Router /drafts/{id}/preview [get]
func (h *DraftHandler) GetPreview(c *gin.Context) {
	h.withPreview(c, h.service.GetPreview)
}

// Place drops a token into a slot
// @Summary Place token
// @Tags preview
// @Accept json
// @Param id path string true "Draft ID"
// @Param placement body services.PlaceRequest true "Slot and token"
// @Success 200 {object} services.PlacementResponse
// @Router /drafts/{id}/preview/placements [post]
func (h *DraftHandler) Place(c *gin.Context) {
	var req services.PlaceRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.Place(c.Request.Context(), draftID, userID, &req)
	})
}

// RemovePlacement empties a slot or returns one token to the pool
// @Summary Remove placement
// @Tags preview
// @Accept json
// @Param id path string true "Draft ID"
// @Param placement body services.RemovePlacementRequest true "Slot or token"
// @Success 200 {object} preview.Snapshot
// @Router /drafts/{id}/preview/placements [delete]
func (h *DraftHandler) RemovePlacement(c *gin.Context) {
	var req services.RemovePlacementRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.RemovePlacement(c.Request.Context(), draftID, userID, &req)
	})
}

// Retry returns the wrong placements to the pool
// @Router /drafts/{id}/preview/retry [post]
func (h *DraftHandler) Retry(c *gin.Context) {
	h.withPreview(c, h.service.Retry)
}

// Reset clears every placement
// @Router /drafts/{id}/preview/reset [post]
func (h *DraftHandler) Reset(c *gin.Context) {
	h.withPreview(c, h.service.Reset)
}

// Play starts sequence playback
// @Router /drafts/{id}/preview/play [post]
func (h *DraftHandler) Play(c *gin.Context) {
	h.withPreview(c, h.service.Play)
}

// Replay restarts sequence playback from the first step
// @Router /drafts/{id}/preview/replay [post]
func (h *DraftHandler) Replay(c *gin.Context) {
	h.withPreview(c, h.service.Replay)
}

// MediaEnded reports that the client finished playing a cue
// @Summary Media ended
// @Tags preview
// @Accept json
// @Param id path string true "Draft ID"
// @Param cue body sequencer.Cue true "Cue that finished"
// @Success 200 {object} preview.Snapshot
// @Router /drafts/{id}/preview/media/ended [post]
func (h *DraftHandler) MediaEnded(c *gin.Context) {
	var cue sequencer.Cue
	h.withDraftBody(c, &cue, func(draftID, userID string) (interface{}, error) {
		return h.service.MediaEnded(c.Request.Context(), draftID, userID, cue)
	})
}

// MediaFailed reports that the client could not play a cue
// @Summary Media failed
// @Tags preview
// @Accept json
// @Param id path string true "Draft ID"
// @Param failure body services.MediaFailedRequest true "Cue and reason"
// @Success 200 {object} preview.Snapshot
// @Router /drafts/{id}/preview/media/failed [post]
func (h *DraftHandler) MediaFailed(c *gin.Context) {
	var req services.MediaFailedRequest
	h.withDraftBody(c, &req, func(draftID, userID string) (interface{}, error) {
		return h.service.MediaFailed(c.Request.Context(), draftID, userID, &req)
	})
}

// ===== HELPERS =====

func (h *DraftHandler) withDraft(c *gin.Context, fn func(draftID, userID string) (interface{}, error)) {
	draftID := ParseStringIDParam(c, "id")
	if draftID == "" {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := fn(draftID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DraftHandler) withDraftBody(c *gin.Context, dest interface{}, fn func(draftID, userID string) (interface{}, error)) {
	if ParseStringIDParam(c, "id") == "" {
		return
	}
	if !bindJSON(c, dest) {
		return
	}
	h.withDraft(c, fn)
}

type previewAction func(ctx context.Context, draftID, authorID string) (*preview.Snapshot, error)

func (h *DraftHandler) withPreview(c *gin.Context, action previewAction) {
	h.withDraft(c, func(draftID, userID string) (interface{}, error) {
		return action(c.Request.Context(), draftID, userID)
	})
}
