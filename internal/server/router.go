package server

import (
	"github.com/dosym/pagebox/internal/auth"
	"github.com/dosym/pagebox/internal/config"
	"github.com/dosym/pagebox/internal/metrics"
	"github.com/dosym/pagebox/internal/publish"
	"github.com/dosym/pagebox/internal/site"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config         config.Config
	DB             *pgxpool.Pool
	ObjectStore    *minio.Client
	AuthService    *auth.Service
	SiteService    *site.Service
	PublishService *publish.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	// Anonymous public serving path.
	if deps.PublishService != nil {
		publish.RegisterRoutes(router, deps.PublishService)
	}

	api := router.Group("/v1")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService)

		protected := api.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))

		if deps.SiteService != nil {
			site.RegisterRoutes(protected, deps.SiteService)
		}
	}

	return router
}
