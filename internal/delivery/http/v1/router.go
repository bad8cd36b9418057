package v1

import (
	"net/http"

	"contact-manager-backend/internal/delivery/http/middleware"
	"contact-manager-backend/internal/delivery/http/response"
	"contact-manager-backend/internal/domain"
	"contact-manager-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC      domain.ContactUsecase
	HealthUC       usecase.HealthUsecase
	ExportUC       domain.ExportUsecase
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
	// RateLimitStore is nil to keep counters in memory.
	RateLimitStore goredis.Scripter
	AccessLog      bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.AccessLog {
		r.Use(middleware.AccessLog())
	}
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	if deps.RateLimit.Limit > 0 {
		r.Use(middleware.RateLimitMiddleware(deps.RateLimit, deps.RateLimitStore))
	}

	api := r.Group("/api")

	// Health Check
	api.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status, err := deps.HealthUC.Check(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.JSON(c, http.StatusOK, status)
	})

	NewContactHandler(api, deps.ContactUC)
	if deps.ExportUC != nil {
		NewExportHandler(api, deps.ExportUC)
	}

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
