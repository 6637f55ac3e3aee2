package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/auth"
	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/runner"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// LoginRequest is the body of POST /api/login and /api/admin/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	Success           bool                          `json:"success"`
	User              models.Public                 `json:"user"`
	LoggedInEmployees []string                      `json:"loggedInEmployees"`
	PauseState        map[string]models.PauseRecord `json:"pauseState"`
	ResumeInfo        *models.PauseRecord           `json:"resumeInfo"`
}

// LogoutRequest is the body of POST /api/logout. Progress is only
// recorded when the employee holds the active shift.
type LogoutRequest struct {
	Username      string   `json:"username" binding:"required"`
	Progress      *float64 `json:"progress" binding:"omitempty,min=0,max=1"`
	IsActiveShift bool     `json:"isActiveShift"`
}

// StatusResponse is the server-side view of the relay at one instant
type StatusResponse struct {
	Shift     models.ActiveShiftStatus `json:"shift"`
	Remaining schedule.Remaining       `json:"remaining"`
	Runner    runner.Result            `json:"runner"`
	Upcoming  *models.UpcomingShift    `json:"upcoming"`
	Board     []runner.Row             `json:"board"`
	Fallback  bool                     `json:"fallback"`
}

// GetState returns the presence and pause registry
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tracker.Snapshot())
}

// Login checks credentials, registers the employee as present and hands
// out any pending pause record exactly once. Masters are authenticated
// but never appear in the logged-in set.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	res, err := h.Tracker.LoginWith(func() (models.Employee, error) {
		return auth.Authenticate(ctx, h.Store, req.Username, req.Password)
	})
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.logger().Info("Rejected login", zap.String("username", req.Username))
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if res.Resume != nil {
		event := presence.NewResumeEvent(res.Employee.Name, *res.Resume, h.now())
		h.logger().Info("Employee resumed",
			zap.String("name", event.Name),
			zap.String("gap", schedule.FormatDuration(event.GapMs)),
			zap.Float64("pausedProgress", event.PausedProgress))
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:           true,
		User:              res.Employee.Public(),
		LoggedInEmployees: res.Snapshot.LoggedInEmployees,
		PauseState:        res.Snapshot.PauseState,
		ResumeInfo:        res.Resume,
	})
}

// Logout removes the employee from the logged-in set, freezing their
// progress when they held the active shift.
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.Tracker.Logout(models.NormalizeName(req.Username), req.Progress, req.IsActiveShift)
	c.JSON(http.StatusOK, snap)
}

// GetStatus resolves the active shift for today's schedule and classifies
// its holder. An empty schedule falls back to the default rotation.
func (h *Handler) GetStatus(c *gin.Context) {
	now := h.now()
	today, err := store.Today(c.Request.Context(), h.Store, now)
	if err != nil {
		h.storeError(c, err)
		return
	}
	fallback := len(today) == 0
	if fallback {
		today = schedule.DefaultShifts
	}

	snap := h.Tracker.Snapshot()
	active := schedule.Resolve(now, today)
	c.JSON(http.StatusOK, StatusResponse{
		Shift:     active,
		Remaining: schedule.FormatRemaining(active.RemainingMs),
		Runner:    runner.Classify(active, snap),
		Upcoming:  schedule.UpcomingNotification(now, h.NotifyMinutesBefore, today),
		Board:     runner.Board(active, today, snap),
		Fallback:  fallback,
	})
}

// AdminLogin issues a master token
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := auth.Authenticate(c.Request.Context(), h.Store, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if e.Role != models.RoleMaster {
		fail(c, http.StatusForbidden, "Master role required")
		return
	}

	token, err := h.Signer.CreateToken(e)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Could not create token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
