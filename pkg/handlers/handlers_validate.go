package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// ValidateRequest optionally carries a draft schedule. Without one, the
// schedule effective today is checked.
type ValidateRequest struct {
	Shifts []models.ShiftDefinition `json:"shifts"`
}

// ValidateSchedule reports gaps, overlaps and unusable definitions.
// The result is informational; nothing is rejected.
func (h *Handler) ValidateSchedule(c *gin.Context) {
	var input ValidateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	shifts := input.Shifts
	if shifts == nil {
		today, err := store.Today(c.Request.Context(), h.Store, h.now())
		if err != nil {
			h.storeError(c, err)
			return
		}
		shifts = today
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"coverage": schedule.Validate(shifts),
		"stats": gin.H{
			"shift_count": len(shifts),
		},
	})
}
