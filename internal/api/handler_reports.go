package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUsage handles GET /api/facilities/{facility_id}/usage.
func (h *Handler) GetUsage(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Param("facility_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid facility ID"})
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid from, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid to, expected YYYY-MM-DD"})
		return
	}

	report, err := h.reports.Usage(c.Request.Context(), facilityID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
