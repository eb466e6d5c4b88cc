package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTranscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, createdAt time.Time) *domain.Transcription {
	tb.Helper()
	tr := &domain.Transcription{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            title,
		OriginalFilename: title + ".mp3",
		StoragePath:      userID.String() + "/" + uuid.NewString() + "/" + title + ".mp3",
		Text:             "hello world",
		CreatedAt:        createdAt,
	}
	if err := tr.SetSegments([]domain.Segment{{Start: 0, End: 1.5, Text: "hello world"}}); err != nil {
		tb.Fatalf("seed segments: %v", err)
	}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed transcription: %v", err)
	}
	return tr
}
