package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/id"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	// loc is the shop time zone; date parameters are local days.
	loc *time.Location
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(loc *time.Location) *BaseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BaseHandler{loc: loc}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error processes error and sends appropriate response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

// HandleError registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParamID parses a path parameter as an ID, reporting a validation error on failure.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", name))
		return id.ID{}, false
	}
	return parsed, true
}

// ParseDay parses YYYY-MM-DD as midnight in the shop time zone.
// An empty value yields nil.
func (h *BaseHandler) ParseDay(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, h.loc)
	if err != nil {
		return nil, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return &t, nil
}

// DayQuery is ParseDay for a query parameter. It reports the error itself.
func (h *BaseHandler) DayQuery(c *gin.Context, key string) (*time.Time, bool) {
	t, err := h.ParseDay(key, c.Query(key))
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return t, true
}

// dayOr returns *t or the zero time.
func dayOr(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// CurrentUserID returns the authenticated staff member's ID, if any.
func (h *BaseHandler) CurrentUserID(c *gin.Context) *id.ID {
	raw := appctx.GetUserID(c.Request.Context())
	if raw == "" {
		return nil
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
