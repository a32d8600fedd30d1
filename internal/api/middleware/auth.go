package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/pkg/response"
	"github.com/linskybing/fieldreport-go/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Auth handles authorization middleware. Roles are read from the user
// table on every check so a demotion takes effect before the token expires.
type Auth struct {
	repos *repository.Repos
}

func NewAuth(repos *repository.Repos) *Auth {
	return &Auth{repos: repos}
}

func (a *Auth) currentRole(c *gin.Context) (uint, user.Role, bool) {
	claims, err := utils.GetClaimsFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return 0, "", false
	}

	u, err := a.repos.User.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
			return 0, "", false
		}
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("load user role")
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{Error: "internal server error"})
		return 0, "", false
	}
	c.Set("role", u.Role)
	return u.UID, u.Role, true
}

// RequireRole lets the request through when the caller holds one of roles.
func (a *Auth) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, ok := a.currentRole(c)
		if !ok {
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "Forbidden"})
	}
}

// Admin checks if user is an administrator.
func (a *Auth) Admin() gin.HandlerFunc {
	return a.RequireRole(user.RoleAdmin)
}

// Approver allows supervisors and administrators.
func (a *Auth) Approver() gin.HandlerFunc {
	return a.RequireRole(user.RoleAdmin, user.RoleSupervisor)
}

// UserOrAdmin checks if user is the target user or an administrator.
func (a *Auth) UserOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, role, ok := a.currentRole(c)
		if !ok {
			return
		}

		targetUID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid user id"})
			return
		}

		if uid == uint(targetUID64) || role == user.RoleAdmin {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "Forbidden"})
	}
}

// Member refreshes the caller's role from the user table for any known role.
func (a *Auth) Member() gin.HandlerFunc {
	return a.RequireRole(user.RoleAdmin, user.RoleSupervisor, user.RoleTechnician)
}
