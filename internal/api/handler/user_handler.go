package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/response"
)

// UserHandler user endpoints
type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ────────────────────── self service ──────────────────────

// UpdateMe
// PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword
// PUT /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetNotifications
// GET /api/v1/users/me/notifications
func (h *UserHandler) GetNotifications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	pref, err := h.userSvc.GetNotificationPreference(c.Request.Context(), userID)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, pref)
}

// UpdateNotifications
// PUT /api/v1/users/me/notifications
func (h *UserHandler) UpdateNotifications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.NotificationPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pref, err := h.userSvc.SetNotificationPreference(c.Request.Context(), userID, &req)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, pref)
}

// ────────────────────── admin ──────────────────────

// List
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, users, total, req.Page, req.PageSize)
}

// Create
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.Created(c, user)
}

// Update
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// ResetPassword
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.AdminResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), &req, callerID); err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "user not found")
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.Forbidden(c, 12002, err.Error())
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.Forbidden(c, 12003, err.Error())
	case errors.Is(err, service.ErrUserSelfReset):
		response.Forbidden(c, 12004, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrUserCPFExists):
		response.Conflict(c, 12006, err.Error())
	case errors.Is(err, service.ErrUserEmailExists):
		response.Conflict(c, 12007, err.Error())
	case errors.Is(err, service.ErrInvalidUserCPF):
		response.BadRequest(c, 12008, err.Error())
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 12009, err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12010, err.Error())
	default:
		response.InternalError(c)
	}
}
