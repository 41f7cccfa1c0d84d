package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/middleware"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext builds the audit actor from the authenticated claims and
// the client address.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IPAddress: c.ClientIP()}
	if claims := claimsFromContext(c); claims != nil {
		actor.UserID = claims.UserID
	}
	return actor
}
