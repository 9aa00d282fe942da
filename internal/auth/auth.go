package auth

import (
	"crypto/rand"
	"encoding/base64"

	apperrors "sensus_chatbot_go_backend/internal/errors"
	"sensus_chatbot_go_backend/internal/models"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session_token"

// AuthMiddleware resolves the session cookie to an account and stores it in
// the gin context. Missing, unknown or deactivated sessions fail with 401.
func AuthMiddleware(sessionStore services.TokenStore, users services.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			apperrors.HandleError(c, apperrors.New401Error())
			c.Abort()
			return
		}

		userID, err := sessionStore.Get(c.Request.Context(), token)
		if err != nil {
			apperrors.HandleError(c, apperrors.New401Error())
			c.Abort()
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil || !user.IsActive {
			apperrors.HandleError(c, apperrors.New401Error())
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set(SessionCookieName, token)
		c.Next()
	}
}

// AdminMiddleware runs after AuthMiddleware and rejects non-admin accounts.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apperrors.HandleError(c, apperrors.New401Error())
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			apperrors.HandleError(c, apperrors.New403Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account placed in the context by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// NewSessionToken returns a fresh random session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
