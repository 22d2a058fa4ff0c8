package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and staff account endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{TokenPair: tokens, User: user})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, tokens)
}

// Logout handles POST /auth/logout, revoking every refresh token of the user.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := h.CurrentUserID(c)
	if userID == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), *userID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := h.CurrentUserID(c)
	if userID == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), *userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := h.CurrentUserID(c)
	if userID == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), *userID, req.ToAuthRequest()); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateUser handles POST /users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user)
}

// ListUsers handles GET /users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	limit := q.LimitOr(50)
	users, total, err := h.service.ListUsers(c.Request.Context(), auth.UserFilter{
		Search:          q.Search,
		Role:            q.Role,
		IncludeInactive: q.IncludeInactive,
		Limit:           limit,
		Offset:          q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	if users == nil {
		users = []auth.User{}
	}
	h.OK(c, dto.ListResponse{
		Items:      users,
		TotalCount: total,
		Limit:      limit,
		Offset:     q.Offset,
	})
}

// DeactivateUser handles DELETE /users/:id
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if current := h.CurrentUserID(c); current != nil && *current == userID {
		h.Error(c, apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot deactivate your own account"))
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateUser handles PUT /users/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actor := h.CurrentUserID(c)
	if actor == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), *actor, userID, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// ToggleUserStatus handles PATCH /users/:id/status
func (h *AuthHandler) ToggleUserStatus(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actor := h.CurrentUserID(c)
	if actor == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	status, err := h.service.ToggleUserStatus(c.Request.Context(), *actor, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.UserStatusResponse{Status: status})
}
