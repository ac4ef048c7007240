package v1

import (
	"net/http"

	"campus-connect-backend/config"
	"campus-connect-backend/internal/delivery/http/middleware"
	"campus-connect-backend/internal/delivery/http/response"
	"campus-connect-backend/internal/domain"
	"campus-connect-backend/internal/usecase"
	"campus-connect-backend/pkg/metrics"
	"campus-connect-backend/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ProfileUC domain.StudentProfileUsecase
	ExportUC  domain.ProfileExportUsecase
	HealthUC  usecase.HealthUsecase
	Scanner   antivirus.Scanner
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 1 << 20

	window := deps.Config.RateLimitWindow()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := v1.Group("")
	api.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	{
		NewStudentProfileHandler(api, StudentProfileHandlerDeps{
			ProfileUC:      deps.ProfileUC,
			ExportUC:       deps.ExportUC,
			Scanner:        deps.Scanner,
			ResumeMaxBytes: deps.Config.ResumeMaxBytes,
			WriteLimiter: middleware.RateLimitMiddleware(
				middleware.ProfileWriteRateLimitConfig(deps.Config.RateLimitWriteThreshold, window),
			),
		})
	}

	return r
}
