package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
	"github.com/yungbote/whisperweb-backend/internal/platform/ctxutil"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (fr *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error) {
	for _, u := range users {
		fr.byEmail[u.Email] = u
	}
	return users, nil
}

func (fr *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range fr.byEmail {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (fr *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, e := range emails {
		if u, ok := fr.byEmail[e]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (fr *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, ok := fr.byEmail[email]
	return ok, nil
}

func newTestAuthService(t *testing.T, users *fakeUserRepo) AuthService {
	t.Helper()
	return NewAuthService(nil, testLogger(t), users, nil, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestAuthService(t, users)

		user, err := svc.RegisterUser(ctx, "  Alice@Example.COM ", "correct horse battery")
		if err != nil {
			t.Fatalf("RegisterUser: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Fatalf("email not normalized: %q", user.Email)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse battery")); err != nil {
			t.Fatalf("stored password does not verify: %v", err)
		}
		if _, ok := users.byEmail["alice@example.com"]; !ok {
			t.Fatal("user row was not persisted")
		}
	})

	t.Run("rejects taken email", func(t *testing.T) {
		users := newFakeUserRepo()
		users.byEmail["alice@example.com"] = &domain.User{ID: uuid.New(), Email: "alice@example.com"}
		svc := newTestAuthService(t, users)

		_, err := svc.RegisterUser(ctx, "alice@example.com", "another password")
		if apierr.Status(err) != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", apierr.Status(err))
		}
		if apierr.CodeOf(err) != "email_taken" {
			t.Fatalf("code=%q, want email_taken", apierr.CodeOf(err))
		}
	})

	t.Run("rejects weak password", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserRepo())
		_, err := svc.RegisterUser(ctx, "bob@example.com", "short")
		if apierr.CodeOf(err) != "weak_password" {
			t.Fatalf("code=%q, want weak_password", apierr.CodeOf(err))
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserRepo())
		_, err := svc.RegisterUser(ctx, "not-an-email", "long enough password")
		if apierr.CodeOf(err) != "invalid_email" {
			t.Fatalf("code=%q, want invalid_email", apierr.CodeOf(err))
		}
	})
}

func TestSetContextFromToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t, newFakeUserRepo())

	signToken := func(t *testing.T, secret string, sub string, exp time.Time) string {
		t.Helper()
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		})
		signed, err := tok.SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return signed
	}

	t.Run("valid token sets request data", func(t *testing.T) {
		userID := uuid.New()
		token := signToken(t, "test-secret", userID.String(), time.Now().Add(time.Hour))

		out, err := svc.SetContextFromToken(ctx, token)
		if err != nil {
			t.Fatalf("SetContextFromToken: %v", err)
		}
		rd := ctxutil.GetRequestData(out)
		if rd == nil || rd.UserID != userID {
			t.Fatalf("request data not set, got %+v", rd)
		}
	})

	t.Run("wrong secret is unauthenticated", func(t *testing.T) {
		token := signToken(t, "other-secret", uuid.NewString(), time.Now().Add(time.Hour))
		_, err := svc.SetContextFromToken(ctx, token)
		if apierr.Status(err) != http.StatusUnauthorized {
			t.Fatalf("status=%d, want 401", apierr.Status(err))
		}
	})

	t.Run("expired token is unauthenticated", func(t *testing.T) {
		token := signToken(t, "test-secret", uuid.NewString(), time.Now().Add(-time.Minute))
		_, err := svc.SetContextFromToken(ctx, token)
		if apierr.Status(err) != http.StatusUnauthorized {
			t.Fatalf("status=%d, want 401", apierr.Status(err))
		}
	})

	t.Run("empty token is unauthenticated", func(t *testing.T) {
		_, err := svc.SetContextFromToken(ctx, "")
		if apierr.Status(err) != http.StatusUnauthorized {
			t.Fatalf("status=%d, want 401", apierr.Status(err))
		}
	})
}
