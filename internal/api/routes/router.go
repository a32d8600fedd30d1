package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/linskybing/fieldreport-go/docs"
	"github.com/linskybing/fieldreport-go/internal/api/handlers"
	"github.com/linskybing/fieldreport-go/internal/api/middleware"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/metrics"
	"github.com/linskybing/fieldreport-go/internal/repository"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the engine with the shared middleware chain and every
// route registered.
func NewRouter(repos *repository.Repos, svc *application.Services, registry *schema.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.LoggingMiddleware())

	RegisterRoutes(r, repos, svc, registry)
	return r
}

func RegisterRoutes(r *gin.Engine, repos *repository.Repos, svc *application.Services, registry *schema.Registry) {
	h := handlers.New(svc, registry)
	authMiddleware := middleware.NewAuth(repos)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/register", h.User.Register)
	r.POST("/login", h.User.Login)
	r.POST("/logout", h.User.Logout)
	r.GET("/auth/status", middleware.JWTAuthMiddleware(), h.User.AuthStatus)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware())
	{
		schemas := auth.Group("/schemas")
		{
			schemas.GET("", h.Schema.ListSchemas)
			schemas.GET("/:id", h.Schema.GetSchema)
			schemas.POST("/:id/visibility", h.Schema.EvaluateVisibility)
		}

		auth.POST("/submissions/:formType", authMiddleware.Member(), h.Form.Submit)

		forms := auth.Group("/forms")
		{
			forms.GET("", h.Form.ListForms)
			forms.GET("/export", h.Export.ExportList)
			forms.GET("/:id", h.Form.GetForm)
			forms.GET("/:id/pdf", h.Export.ExportPDF)
			forms.GET("/:id/xlsx", h.Export.ExportXLSX)
			forms.PUT("/:id", authMiddleware.Member(), h.Form.UpdateForm)
			forms.DELETE("/:id", authMiddleware.Member(), h.Form.DeleteForm)
			forms.POST("/:id/submit", authMiddleware.Member(), h.Form.SubmitDraft)
			forms.POST("/:id/approve", authMiddleware.Approver(), h.Form.Approve)
		}

		auth.DELETE("/photos/:id", authMiddleware.Member(), h.Form.DeletePhoto)

		users := auth.Group("/users")
		{
			users.GET("", authMiddleware.Admin(), h.User.GetUsers)
			users.GET("/:id", authMiddleware.UserOrAdmin(), h.User.GetUserByID)
			users.PUT("/:id", authMiddleware.UserOrAdmin(), h.User.UpdateUser)
			users.DELETE("/:id", authMiddleware.Admin(), h.User.DeleteUser)
		}

		audit := auth.Group("/audit/logs")
		{
			audit.GET("", authMiddleware.Admin(), h.Audit.GetAuditLogs)
		}
	}
}
