package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/constants"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
)

// RequireAuth rejects requests that carry no logged-in session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)
		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Handlers read the principal from the request context, not the
		// session store.
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the session principal's ID. Login stores the ID as a
// uint64 and RequireAuth copies it verbatim, so any other type means there
// is no authenticated principal.
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
