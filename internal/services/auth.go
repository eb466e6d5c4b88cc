package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/data/repos"
	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
	"github.com/yungbote/whisperweb-backend/internal/platform/ctxutil"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*domain.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.Invalid("invalid_email", fmt.Errorf("a valid email is required"))
	}
	if len(password) < 8 {
		return nil, apierr.Invalid("weak_password", fmt.Errorf("password must be at least 8 characters"))
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, apierr.Persistence("register_failed", err)
	}
	if exists {
		return nil, apierr.Invalid("email_taken", fmt.Errorf("email already in use"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Persistence("register_failed", err)
	}

	user := &domain.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
	}
	if _, err := as.userRepo.Create(ctx, nil, []*domain.User{user}); err != nil {
		if errors.Is(err, repos.ErrDuplicateEmail) {
			return nil, apierr.Invalid("email_taken", fmt.Errorf("email already in use"))
		}
		return nil, apierr.Persistence("register_failed", err)
	}
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", apierr.Persistence("login_failed", err)
	}
	if len(users) == 0 {
		return "", "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
	}

	var accessToken, refreshToken string
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Stale tokens from earlier sessions are swept here rather than left
		// to accumulate.
		foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if ftErr != nil {
			return fmt.Errorf("check user tokens: %w", ftErr)
		}
		expired := []uuid.UUID{}
		for _, t := range foundTokens {
			if t != nil && t.ExpiresAt.Before(time.Now()) {
				expired = append(expired, t.ID)
			}
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, expired); dErr != nil {
			return fmt.Errorf("delete expired tokens: %w", dErr)
		}

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.NewString()
		userToken := &domain.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*domain.UserToken{userToken}); cErr != nil {
			return fmt.Errorf("create user token: %w", cErr)
		}
		return nil
	})
	if txErr != nil {
		as.log.Warn("login transaction failed", "error", txErr)
		return "", "", apierr.Persistence("login_failed", txErr)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apierr.Unauthenticated(fmt.Errorf("missing refresh token"))
	}

	var accessToken, newRefreshToken string
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if errors.Is(ftErr, gorm.ErrRecordNotFound) {
			return apierr.Unauthenticated(fmt.Errorf("unknown refresh token"))
		}
		if ftErr != nil {
			return fmt.Errorf("fetch refresh token: %w", ftErr)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
				return fmt.Errorf("delete expired refresh token: %w", dErr)
			}
			return apierr.Unauthenticated(fmt.Errorf("refresh token expired"))
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return apierr.Unauthenticated(fmt.Errorf("no user for refresh token"))
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.NewString()
		userToken := &domain.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*domain.UserToken{userToken}); cErr != nil {
			return fmt.Errorf("create rotated token: %w", cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
			return fmt.Errorf("remove old refresh token: %w", dErr)
		}
		return nil
	})
	if txErr != nil {
		var ae *apierr.Error
		if errors.As(txErr, &ae) {
			return "", "", txErr
		}
		as.log.Warn("refresh transaction failed", "error", txErr)
		return "", "", apierr.Persistence("refresh_failed", txErr)
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("no request data in context"))
	}
	if err := as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID}); err != nil {
		as.log.Warn("logout failed", "error", err)
		return apierr.Persistence("logout_failed", err)
	}
	return nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthenticated(fmt.Errorf("missing token"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.Unauthenticated(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthenticated(fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthenticated(fmt.Errorf("invalid subject in token: %w", err))
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
