package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// ShiftRequest creates a shift definition. Hour ranges and dates are
// checked by the store.
type ShiftRequest struct {
	Name           string  `json:"name" binding:"required"`
	StartHour      float64 `json:"startHour"`
	EndHour        float64 `json:"endHour" binding:"required"`
	Label          string  `json:"label"`
	Order          int     `json:"order"`
	EffectiveFrom  string  `json:"effectiveFrom"`
	EffectiveUntil *string `json:"effectiveUntil"`
}

// ShiftPatch updates a shift definition; absent fields are kept. An
// explicit null effectiveUntil makes the shift open-ended.
type ShiftPatch struct {
	Name           *string        `json:"name" binding:"omitempty,min=1"`
	StartHour      *float64       `json:"startHour"`
	EndHour        *float64       `json:"endHour"`
	Label          *string        `json:"label"`
	Order          *int           `json:"order"`
	EffectiveFrom  *string        `json:"effectiveFrom"`
	EffectiveUntil optionalString `json:"effectiveUntil"`
}

type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// ListShifts returns every definition sorted by order
func (h *Handler) ListShifts(c *gin.Context) {
	shifts, err := h.Store.ListShifts(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	if shifts == nil {
		shifts = []models.ShiftDefinition{}
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// GetSchedule returns the definitions effective today
func (h *Handler) GetSchedule(c *gin.Context) {
	today, err := store.Today(c.Request.Context(), h.Store, h.now())
	if err != nil {
		h.storeError(c, err)
		return
	}
	if today == nil {
		today = []models.ShiftDefinition{}
	}
	c.JSON(http.StatusOK, gin.H{"schedule": today})
}

// CreateShift adds a definition
func (h *Handler) CreateShift(c *gin.Context) {
	var req ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	def, err := h.Store.CreateShift(c.Request.Context(), models.ShiftDefinition{
		EmployeeName:   req.Name,
		StartHour:      req.StartHour,
		EndHour:        req.EndHour,
		Label:          req.Label,
		Order:          req.Order,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "shift": def})
}

// UpdateShift applies a patch to a definition
func (h *Handler) UpdateShift(c *gin.Context) {
	id, ok := shiftID(c)
	if !ok {
		return
	}
	var patch ShiftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	def, err := h.Store.GetShift(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	if patch.Name != nil {
		def.EmployeeName = *patch.Name
	}
	if patch.StartHour != nil {
		def.StartHour = *patch.StartHour
	}
	if patch.EndHour != nil {
		def.EndHour = *patch.EndHour
	}
	if patch.Label != nil {
		def.Label = *patch.Label
	}
	if patch.Order != nil {
		def.Order = *patch.Order
	}
	if patch.EffectiveFrom != nil {
		def.EffectiveFrom = *patch.EffectiveFrom
	}
	if patch.EffectiveUntil.Set {
		def.EffectiveUntil = patch.EffectiveUntil.Value
	}

	updated, err := h.Store.UpdateShift(ctx, def)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shift": updated})
}

// DeleteShift removes a definition
func (h *Handler) DeleteShift(c *gin.Context) {
	id, ok := shiftID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteShift(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func shiftID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid shift ID")
		return 0, false
	}
	return id, true
}
