package router

import (
	"github.com/gin-gonic/gin"

	"ogarx/internal/handler"
	"ogarx/internal/middleware"
	"ogarx/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	extractionH *handler.ExtractionHandler,
	batchH *handler.BatchHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
	maxUploadBytes int64,
) *gin.Engine {
	r := gin.New()
	if maxUploadBytes > 0 {
		r.MaxMultipartMemory = maxUploadBytes
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	extractions := protected.Group("/extractions")
	extractions.POST("", extractionH.Upload)
	extractions.POST("/storage", extractionH.FromStorage)

	b := protected.Group("/batch")
	b.GET("/records", batchH.Records)
	b.GET("/results", batchH.Results)
	b.DELETE("", batchH.Clear)
	b.GET("/export", batchH.Export)
	b.POST("/export/publish", batchH.Publish)

	protected.DELETE("/session", batchH.EndSession)

	return r
}
