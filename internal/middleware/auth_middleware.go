package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/services"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

const (
	ContextUser     = "user"
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// AuthRequired resolves the bearer token to a user and stores it on the
// context. Websocket clients that cannot set headers may pass ?token=.
func AuthRequired(auth services.AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, utils.ErrMissingBearerToken)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			var se *services.Error
			if errors.As(err, &se) {
				utils.UnauthorizedResponse(c, se.Detail)
				return
			}
			log.WithError(err).Error("Authentication lookup failed")
			utils.InternalServerErrorResponse(c)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, string(user.Role))
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c.Request.URL.Path == "/ws" {
		return c.Query("token")
	}
	return ""
}

// RoleRequired rejects users whose role differs.
func RoleRequired(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			utils.ForbiddenResponse(c, utils.ErrNotAuthorized)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by AuthRequired.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
