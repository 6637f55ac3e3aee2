package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

// EmployeeRequest creates an employee
type EmployeeRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"omitempty,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=employee master"`
}

// EmployeePatch updates an employee; absent fields are kept
type EmployeePatch struct {
	Name     *string      `json:"name" binding:"omitempty,min=1"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Password *string      `json:"password" binding:"omitempty,min=1"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=employee master"`
}

// ListEmployees returns every employee without credentials
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.Store.ListEmployees(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	public := make([]models.Public, 0, len(employees))
	for _, e := range employees {
		public = append(public, e.Public())
	}
	c.JSON(http.StatusOK, gin.H{"employees": public})
}

// CreateEmployee adds an employee or master account
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.Store.CreateEmployee(c.Request.Context(), models.Employee{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "employee": e.Public()})
}

// UpdateEmployee applies a patch. Renaming an employee, or promoting them
// to master, drops the presence state held under the old identity.
func (h *Handler) UpdateEmployee(c *gin.Context) {
	var patch EmployeePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	name := models.NormalizeName(c.Param("name"))
	e, err := h.Store.GetEmployee(ctx, name)
	if err != nil {
		h.storeError(c, err)
		return
	}

	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Email != nil {
		e.Email = *patch.Email
	}
	if patch.Password != nil {
		e.Password = *patch.Password
	}
	if patch.Role != nil {
		e.Role = *patch.Role
	}

	var updated models.Employee
	update := func() error {
		var err error
		updated, err = h.Store.UpdateEmployee(ctx, name, e)
		return err
	}

	if models.NormalizeName(e.Name) != name || e.Role == models.RoleMaster {
		err = h.Tracker.PurgeWith(name, update)
	} else {
		err = update()
	}
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": updated.Public()})
}

// DeleteEmployee removes the employee together with their presence and
// pause state.
func (h *Handler) DeleteEmployee(c *gin.Context) {
	ctx := c.Request.Context()
	name := models.NormalizeName(c.Param("name"))

	err := h.Tracker.PurgeWith(name, func() error {
		return h.Store.DeleteEmployee(ctx, name)
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
