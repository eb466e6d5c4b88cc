package app

import (
	"fmt"

	"github.com/yungbote/whisperweb-backend/internal/platform/gcp"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
	"github.com/yungbote/whisperweb-backend/internal/services"
)

type Clients struct {
	Bucket gcp.BucketService
	Speech services.SpeechProvider
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket service: %w", err)
	}

	provider, err := services.NewSpeechProviderFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init speech provider: %w", err)
	}

	return Clients{
		Bucket: bucket,
		Speech: provider,
	}, nil
}
