package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/data/repos"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	Transcription repos.TranscriptionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		Transcription: repos.NewTranscriptionRepo(db, log),
	}
}
