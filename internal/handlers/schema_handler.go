package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/gin-gonic/gin"
)

// ListSchemas returns the content shape of every registered exercise type
// @Summary List exercise schemas
// @Tags schemas
// @Produce json
// @Success 200 {array} schema.Descriptor
// @Router /schemas [get]
func ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, schema.All())
}

// GetSchema returns the content shape of one exercise type. Unknown ids get the
// unsupported descriptor.
// @Summary Get exercise schema
// @Tags schemas
// @Produce json
// @Param typeId path int true "Exercise type ID"
// @Success 200 {object} schema.Descriptor
// @Router /schemas/{typeId} [get]
func GetSchema(c *gin.Context) {
	typeID, err := strconv.Atoi(c.Param("typeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid typeId",
			Details: c.Param("typeId"),
		})
		return
	}
	c.JSON(http.StatusOK, schema.Lookup(models.ExerciseTypeID(typeID)))
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exercise-authoring-service",
	})
}
