package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/database"
	"github.com/kimshinchol/nnponline-sub000/internal/dto"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
	"github.com/kimshinchol/nnponline-sub000/internal/middleware"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/services"
	"github.com/kimshinchol/nnponline-sub000/internal/utils"
)

// UserHandler covers the admin user-management routes.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns active users, paginated.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.User{}).Scopes(database.ActiveRows)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		apierrors.InternalError(c, "Failed to count users")
		return
	}

	var users []models.User
	if err := query.Order("id ASC").
		Scopes(database.Paginate(params)).
		Find(&users).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// UpdateUser applies a partial admin edit, including approval.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateUserRequest struct {
		Email      *string      `json:"email"`
		Team       *models.Team `json:"team"`
		IsAdmin    *bool        `json:"is_admin"`
		IsApproved *bool        `json:"is_approved"`
		Password   *string      `json:"password"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(userID, services.UpdateUserInput{
		Email:      req.Email,
		Team:       req.Team,
		IsAdmin:    req.IsAdmin,
		IsApproved: req.IsApproved,
		Password:   req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft-deletes a user account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.DeleteUser(userID, actorID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTeam),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrCannotDeleteSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
