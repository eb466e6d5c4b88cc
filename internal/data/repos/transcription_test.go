package repos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/whisperweb-backend/internal/data/repos/testutil"
	"github.com/yungbote/whisperweb-backend/internal/domain"
)

func TestTranscriptionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewTranscriptionRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "transcriptionrepo@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "stranger@example.com")

	base := time.Now().Add(-1 * time.Hour)
	oldest := testutil.SeedTranscription(t, ctx, tx, owner.ID, "oldest", base)
	newest := testutil.SeedTranscription(t, ctx, tx, owner.ID, "newest", base.Add(10*time.Minute))
	testutil.SeedTranscription(t, ctx, tx, stranger.ID, "other-owner", base.Add(5*time.Minute))

	t.Run("create rejects missing owner", func(t *testing.T) {
		tr := &domain.Transcription{Title: "orphan"}
		if _, err := repo.Create(ctx, tx, tr); err == nil {
			t.Fatal("expected error for transcription without owner")
		}
	})

	t.Run("list is owner scoped and newest first", func(t *testing.T) {
		rows, err := repo.ListByUserID(ctx, tx, owner.ID)
		if err != nil {
			t.Fatalf("ListByUserID: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].Title != "newest" || rows[1].Title != "oldest" {
			t.Fatalf("wrong order: %q then %q", rows[0].Title, rows[1].Title)
		}
	})

	t.Run("list caps at limit", func(t *testing.T) {
		bulk := testutil.SeedUser(t, ctx, tx, "bulk@example.com")
		for i := 0; i < ListLimit+5; i++ {
			testutil.SeedTranscription(t, ctx, tx, bulk.ID, fmt.Sprintf("t-%03d", i), base.Add(time.Duration(i)*time.Second))
		}
		rows, err := repo.ListByUserID(ctx, tx, bulk.ID)
		if err != nil {
			t.Fatalf("ListByUserID: %v", err)
		}
		if len(rows) != ListLimit {
			t.Fatalf("expected %d rows, got %d", ListLimit, len(rows))
		}
	})

	t.Run("get returns full record for owner", func(t *testing.T) {
		got, err := repo.GetByID(ctx, tx, newest.ID, owner.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Text != "hello world" {
			t.Fatalf("unexpected text %q", got.Text)
		}
		segs, err := got.GetSegments()
		if err != nil || len(segs) != 1 {
			t.Fatalf("GetSegments: err=%v len=%d", err, len(segs))
		}
	})

	t.Run("get hides foreign records", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, tx, newest.ID, stranger.ID); !errors.Is(err, ErrTranscriptionNotFound) {
			t.Fatalf("expected ErrTranscriptionNotFound, got %v", err)
		}
	})

	t.Run("delete is owner scoped", func(t *testing.T) {
		if err := repo.DeleteByID(ctx, tx, oldest.ID, stranger.ID); !errors.Is(err, ErrTranscriptionNotFound) {
			t.Fatalf("expected ErrTranscriptionNotFound for stranger, got %v", err)
		}
		if err := repo.DeleteByID(ctx, tx, oldest.ID, owner.ID); err != nil {
			t.Fatalf("DeleteByID: %v", err)
		}
		if err := repo.DeleteByID(ctx, tx, oldest.ID, owner.ID); !errors.Is(err, ErrTranscriptionNotFound) {
			t.Fatalf("expected ErrTranscriptionNotFound after delete, got %v", err)
		}
	})

	t.Run("unknown id not found", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, tx, uuid.New(), owner.ID); !errors.Is(err, ErrTranscriptionNotFound) {
			t.Fatalf("expected ErrTranscriptionNotFound, got %v", err)
		}
	})
}
