package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	BaseHandler
	service services.MediaService
}

func NewMediaHandler(service services.MediaService, logger utils.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// UploadMedia stores an image, audio or video file
// @Summary Upload media
// @Description Uploads a file into the images, audio or video folder and returns its public URL
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Param folder formData string true "Destination folder (images, audio, video)"
// @Success 201 {object} models.MediaUpload
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /media [post]
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	h.LogRequest(c, "Uploading media")

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read uploaded file", err)
		return
	}
	defer file.Close()

	req := &services.MediaUploadRequest{
		Folder:      models.MediaFolder(c.PostForm("folder")),
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	upload, err := h.service.Upload(c.Request.Context(), req, file, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, upload)
}
