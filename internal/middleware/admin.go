package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/constants"
	"github.com/kimshinchol/nnponline-sub000/internal/database"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
)

// loadCurrentUser resolves the session principal against the user table,
// caching it in the context for the rest of the request.
func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	if cached, exists := c.Get(constants.ContextKeyUser); exists {
		if user, ok := cached.(models.User); ok {
			return &user, true
		}
	}

	userID, exists := GetUserID(c)
	if !exists {
		return nil, false
	}

	var user models.User
	if err := database.GetDB().
		Where("is_deleted = ? OR is_deleted IS NULL", false).
		First(&user, userID).Error; err != nil {
		return nil, false
	}

	c.Set(constants.ContextKeyUser, user)
	return &user, true
}

// GetCurrentUser returns the resolved principal for this request.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	return loadCurrentUser(c)
}

// RequireApproved rejects accounts that have not been admin-approved yet.
func RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsApproved {
			apierrors.Forbidden(c, "Account is awaiting admin approval")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin restricts a route to admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsAdmin {
			apierrors.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
