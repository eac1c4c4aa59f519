package router

import (
	"github.com/gin-gonic/gin"

	"docparse/internal/handler"
	"docparse/internal/middleware"
)

// Handlers groups the HTTP handlers wired into the router.
type Handlers struct {
	Parse   *handler.ParseHandler
	Request *handler.RequestHandler
	Model   *handler.ModelHandler
	Health  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. A nil
// validator leaves the API unauthenticated.
func Setup(h Handlers, validator middleware.TokenValidator, corsOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	if len(corsOrigins) > 0 {
		r.Use(middleware.CORS(corsOrigins))
	}

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	authRequired := middleware.AuthMiddleware(validator)

	// Inference endpoint kept at its historical path
	r.POST("/predict", authRequired, h.Parse.Parse)

	v1 := r.Group("/api/v1")
	v1.Use(authRequired)
	v1.POST("/parse", h.Parse.Parse)
	v1.GET("/requests", h.Request.List)
	v1.GET("/requests/:id", h.Request.GetByID)
	v1.GET("/models", h.Model.List)

	return r
}
