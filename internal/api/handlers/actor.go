package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/pkg/utils"
)

// actorFromContext builds the service caller from the verified claims. A
// role refreshed by the auth middleware takes precedence over the token's.
func actorFromContext(c *gin.Context) (application.Actor, error) {
	claims, err := utils.GetClaimsFromContext(c)
	if err != nil {
		return application.Actor{}, err
	}
	role := user.Role(claims.Role)
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(user.Role); ok {
			role = r
		}
	}
	return application.Actor{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      role,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, nil
}
