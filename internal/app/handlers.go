package app

import (
	httpH "github.com/yungbote/whisperweb-backend/internal/http/handlers"
	httpMW "github.com/yungbote/whisperweb-backend/internal/http/middleware"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

type Handlers struct {
	Auth          *httpH.AuthHandler
	User          *httpH.UserHandler
	Upload        *httpH.UploadHandler
	Transcription *httpH.TranscriptionHandler
	Health        *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:          httpH.NewAuthHandler(s.Auth),
		User:          httpH.NewUserHandler(s.User),
		Upload:        httpH.NewUploadHandler(s.Upload),
		Transcription: httpH.NewTranscriptionHandler(s.Transcription),
		Health:        httpH.NewHealthHandler(),
	}
}

func wireMiddleware(log *logger.Logger, s Services) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, s.Auth)
}
