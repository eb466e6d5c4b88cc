package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
	"github.com/yungbote/whisperweb-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	User          services.UserService
	Upload        services.UploadService
	Transcription services.TranscriptionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients) Services {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		r.User,
		r.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(log, r.User)
	uploadService := services.NewUploadService(log, clients.Bucket)
	transcriptionService := services.NewTranscriptionService(log, clients.Bucket, clients.Speech, r.Transcription)

	return Services{
		Auth:          authService,
		User:          userService,
		Upload:        uploadService,
		Transcription: transcriptionService,
	}
}
