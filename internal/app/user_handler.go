package app

import (
	"errors"
	"net/http"

	"politicianfinder/internal/service"
	"politicianfinder/internal/util"

	"github.com/gin-gonic/gin"
)

// UserHandler covers the admin user-management endpoints.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetAllUsers handles listing users (admin only)
// GET /api/v1/admin/users
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	page, limit := pagination(c)

	users, total, err := h.userService.ListUsers(page, limit)
	if err != nil {
		respondUserError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetStats handles the admin dashboard counts (admin only)
// GET /api/v1/admin/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.Stats()
	if err != nil {
		respondUserError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Stats retrieved successfully", gin.H{"stats": stats})
}

// GetUser handles getting a user by ID (admin only)
// GET /api/v1/admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// BanUser handles banning a user (admin only)
// POST /api/v1/admin/users/:id/ban
func (h *UserHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true, "User banned successfully")
}

// UnbanUser handles unbanning a user (admin only)
// POST /api/v1/admin/users/:id/unban
func (h *UserHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false, "User unbanned successfully")
}

func (h *UserHandler) setBanned(c *gin.Context, banned bool, message string) {
	userID := c.Param("id")
	if userID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	if callerID, exists := c.Get("userID"); exists && callerID.(string) == userID {
		util.BadRequest(c, "You cannot ban your own account")
		return
	}

	if err := h.userService.SetBanned(userID, banned); err != nil {
		respondUserError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, message, nil)
}

// UpdateUserRole handles changing a user's role (admin only)
// PUT /api/v1/admin/users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	var req struct {
		UserType string `json:"user_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.SetUserType(userID, req.UserType); err != nil {
		respondUserError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User role updated successfully", nil)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable", nil)
	default:
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
}
