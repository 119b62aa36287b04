// Package server assembles the HTTP routes.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/admin"
	"github.com/skillproof/backend/internal/auth"
	"github.com/skillproof/backend/internal/metrics"
	"github.com/skillproof/backend/internal/middleware"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/response"
)

// Deps are the collaborators the routes need. Gatherer is optional; when set
// its collectors are served on /metrics.
type Deps struct {
	Store       store.Store
	Engine      *verification.Engine
	Workflow    *registration.Workflow
	JWT         *auth.JWTService
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins string
	Logger      *zap.Logger
	// Ready reports backing service health for /health.
	Ready func() error
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authHandler := auth.NewHandler(d.Workflow, d.Engine, d.Store, d.JWT, logger)
	adminHandler := admin.NewHandler(d.Store, d.Engine, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(d.Metrics))

	router.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				response.ServiceUnavailable(c, "unavailable")
				return
			}
		}
		response.OK(c, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register/student", authHandler.RegisterStudent)
		authGroup.POST("/register/graduate", authHandler.RegisterGraduate)
		authGroup.POST("/register/company", authHandler.RegisterCompany)
		authGroup.POST("/register/mentor", authHandler.RegisterMentor)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.JWT(d.JWT), middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.POST("/users", authHandler.RegisterAdmin)
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.POST("/users/:id/verify", adminHandler.VerifyUser)
		adminGroup.GET("/users/:id/affiliations", adminHandler.ListUserAffiliations)

		adminGroup.GET("/pending-domains", adminHandler.ListPendingDomains)
		adminGroup.POST("/pending-domains/:id/approve", adminHandler.ApprovePendingDomain)

		adminGroup.GET("/organizations", adminHandler.ListOrganizations)
		adminGroup.POST("/organizations/:id/verify", adminHandler.VerifyOrganization)
	}
	return router
}
