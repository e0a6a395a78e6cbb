package handlers

import (
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	activityHandler *ActivityHandler
	draftHandler    *DraftHandler
	mediaHandler    *MediaHandler
	tokenParser     TokenParser
	logger          utils.Logger
}

// NewHandlerManager wires handlers to services. A nil parser disables authentication.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	parser TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		activityHandler: NewActivityHandler(serviceManager.Activity(), serviceManager.Export(), logger),
		draftHandler:    NewDraftHandler(serviceManager.Authoring(), logger),
		mediaHandler:    NewMediaHandler(serviceManager.Media(), logger),
		tokenParser:     parser,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.tokenParser, hm.logger))
	{
		// Exercise type registry
		schemas := v1.Group("/schemas")
		{
			schemas.GET("", ListSchemas)
			schemas.GET("/:typeId", GetSchema)
		}

		// Activity routes
		activities := v1.Group("/activities")
		{
			activities.POST("", hm.activityHandler.CreateActivity)
			activities.GET("", hm.activityHandler.ListActivities)
			activities.GET("/:id", hm.activityHandler.GetActivity)
			activities.PUT("/:id", hm.activityHandler.UpdateActivity)
			activities.DELETE("/:id", hm.activityHandler.DeleteActivity)
			activities.GET("/:id/export", hm.activityHandler.ExportActivity)
		}

		// Lesson routes
		lessons := v1.Group("/lessons")
		{
			lessons.GET("/:id/activities", hm.activityHandler.ListLessonActivities)
			lessons.PUT("/:id/activities/order", hm.activityHandler.ReorderLessonActivities)
			lessons.GET("/:id/export", hm.activityHandler.ExportLesson)
		}

		// Draft routes
		drafts := v1.Group("/drafts")
		{
			drafts.POST("", hm.draftHandler.OpenDraft)
			drafts.GET("/:id", hm.draftHandler.GetDraft)
			drafts.DELETE("/:id", hm.draftHandler.CloseDraft)
			drafts.POST("/:id/save", hm.draftHandler.SaveDraft)
			drafts.PUT("/:id/content", hm.draftHandler.SetContent)

			// Document editing
			drafts.POST("/:id/documents", hm.draftHandler.AddDocument)
			drafts.PUT("/:id/documents/:index", hm.draftHandler.UpdateDocument)
			drafts.DELETE("/:id/documents/:index", hm.draftHandler.RemoveDocument)
			drafts.POST("/:id/documents/:index/preview", hm.draftHandler.ShowPreview)

			// Preview interaction
			drafts.GET("/:id/preview", hm.draftHandler.GetPreview)
			drafts.POST("/:id/preview/placements", hm.draftHandler.Place)
			drafts.DELETE("/:id/preview/placements", hm.draftHandler.RemovePlacement)
			drafts.POST("/:id/preview/retry", hm.draftHandler.Retry)
			drafts.POST("/:id/preview/reset", hm.draftHandler.Reset)
			drafts.POST("/:id/preview/play", hm.draftHandler.Play)
			drafts.POST("/:id/preview/replay", hm.draftHandler.Replay)
			drafts.POST("/:id/preview/media/ended", hm.draftHandler.MediaEnded)
			drafts.POST("/:id/preview/media/failed", hm.draftHandler.MediaFailed)
		}

		// Media routes
		v1.POST("/media", hm.mediaHandler.UploadMedia)
	}
}
