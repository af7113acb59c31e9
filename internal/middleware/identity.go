package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
	"github.com/noah-isme/inspection-api/pkg/logger"
	"github.com/noah-isme/inspection-api/pkg/response"
)

// ContextUserKey is the gin context key storing the acting *models.User.
const ContextUserKey = "currentUser"

// DefaultIdentityHeader carries the acting user id.
const DefaultIdentityHeader = "X-User-ID"

type userResolver interface {
	UserByID(id string) (*models.User, error)
}

// Identity resolves the caller from a trusted header against the catalog.
// The id is not verified beyond existing in the catalog.
func Identity(header string, users userResolver) gin.HandlerFunc {
	if header == "" {
		header = DefaultIdentityHeader
	}
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(header))
		if id == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing "+header+" header"))
			c.Abort()
			return
		}
		user, err := users.UserByID(id)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "unknown user"))
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Set(logger.ActorKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by Identity.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
