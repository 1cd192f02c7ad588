// Package handlers turns HTTP requests into service calls.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hospital-meal-api/middleware"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

const dayLayout = "2006-01-02"

type Handler struct {
	svc  *services.Services
	auth *middleware.Auth
	log  *slog.Logger
	loc  *time.Location
	// exposeResetTokens returns reset tokens in the API response. Development
	// only; production delivers them out of band.
	exposeResetTokens bool
}

type Options struct {
	Location          *time.Location
	ExposeResetTokens bool
}

func New(svc *services.Services, auth *middleware.Auth, logger *slog.Logger, opts Options) *Handler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		svc:               svc,
		auth:              auth,
		log:               logger.With("component", "http"),
		loc:               loc,
		exposeResetTokens: opts.ExposeResetTokens,
	}
}

// respondError maps service errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var te *services.TransitionError
	switch {
	case errors.As(err, &te):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    te.From,
			"requested":         te.To,
			"reason":            err.Error(),
			"valid_next_states": te.Valid,
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// parseDay reads a YYYY-MM-DD query value on the ordering calendar.
func (h *Handler) parseDay(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(dayLayout, v, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + key + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

func actorOf(c *gin.Context) services.Actor {
	return services.Actor{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}
