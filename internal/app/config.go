package app

import (
	"time"

	"github.com/yungbote/whisperweb-backend/internal/platform/envutil"
)

type Config struct {
	ServiceName     string
	Environment     string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Port            string
}

func LoadConfig() Config {
	return Config{
		ServiceName:     envutil.String("SERVICE_NAME", "whisperweb-backend"),
		Environment:     envutil.String("ENVIRONMENT", "development"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		Port:            envutil.String("PORT", "8080"),
	}
}
