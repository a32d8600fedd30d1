package testutils

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter returns a bare engine in test mode with register applied.
func SetupRouter(register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if register != nil {
		register(r)
	}
	return r
}
