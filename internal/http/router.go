package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/whisperweb-backend/internal/http/handlers"
	httpMW "github.com/yungbote/whisperweb-backend/internal/http/middleware"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler          *httpH.AuthHandler
	AuthMiddleware       *httpMW.AuthMiddleware
	UserHandler          *httpH.UserHandler
	UploadHandler        *httpH.UploadHandler
	TranscriptionHandler *httpH.TranscriptionHandler
	HealthHandler        *httpH.HealthHandler

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		if cfg.UploadHandler != nil {
			protected.POST("/uploads", cfg.UploadHandler.StageUpload)
		}

		if cfg.TranscriptionHandler != nil {
			protected.POST("/transcriptions", cfg.TranscriptionHandler.Finalize)
			protected.GET("/transcriptions", cfg.TranscriptionHandler.List)
			protected.GET("/transcriptions/:id", cfg.TranscriptionHandler.Get)
			protected.DELETE("/transcriptions/:id", cfg.TranscriptionHandler.Delete)
		}
	}

	return r
}
