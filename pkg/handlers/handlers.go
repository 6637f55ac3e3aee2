package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/auth"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Store   store.Store
	Tracker *presence.Tracker
	Signer  *auth.Signer
	Logger  *zap.Logger

	// Location is the zone schedules are resolved in; nil means Local
	Location *time.Location
	// NotifyMinutesBefore is the upcoming-shift lead time for /status
	NotifyMinutesBefore int
	// Now defaults to time.Now
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// NewRouter builds the gin engine with every route mounted under /api
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger(), CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift Relay API",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/state", h.GetState)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/status", h.GetStatus)
		api.GET("/employees", h.ListEmployees)
		api.GET("/shifts", h.ListShifts)
		api.GET("/schedule", h.GetSchedule)
		api.POST("/admin/login", h.AdminLogin)
	}

	admin := api.Group("")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/employees", h.CreateEmployee)
		admin.PUT("/employees/:name", h.UpdateEmployee)
		admin.DELETE("/employees/:name", h.DeleteEmployee)

		admin.POST("/shifts", h.CreateShift)
		admin.PUT("/shifts/:id", h.UpdateShift)
		admin.DELETE("/shifts/:id", h.DeleteShift)
		admin.GET("/shifts/export", h.ExportShifts)
		admin.POST("/shifts/import", h.ImportShifts)

		admin.POST("/schedule/validate", h.ValidateSchedule)
	}

	return r
}

// CORS allows any origin and answers preflight requests with an empty 200.
// It is installed globally so it also runs for unmatched OPTIONS routes.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestIDHeader carries the correlation ID echoed on every response
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an ID and logs it through zap.
// Polling routes log at debug.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			h.logger().Error("Request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case c.Request.URL.Path == "/api/state" || c.Request.URL.Path == "/api/status":
			h.logger().Debug("Request", fields...)
		default:
			h.logger().Info("Request", fields...)
		}
	}
}

// AuthMiddleware verifies the master JWT for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			fail(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Strip "Bearer " if present
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := h.Signer.VerifyMaster(token)
		if errors.Is(err, auth.ErrNotMaster) {
			fail(c, http.StatusForbidden, "Master role required")
			return
		}
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": h.now().Format(time.RFC3339)})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// storeError maps store sentinels to HTTP statuses
func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalid):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
