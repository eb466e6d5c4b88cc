package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/data/repos"
	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
	downloads int
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (fb *fakeBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.downloads++
	data, ok := fb.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fb *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.deleteErr != nil {
		return fb.deleteErr
	}
	fb.deleted = append(fb.deleted, key)
	delete(fb.objects, key)
	return nil
}

func (fb *fakeBucket) SignedUploadURL(key, contentType string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/" + key + "?signed=1", nil
}

type fakeSpeechProvider struct {
	result *SpeechResult
	err    error
	calls  int
}

func (fp *fakeSpeechProvider) Transcribe(ctx context.Context, audio []byte, filename, language string) (*SpeechResult, error) {
	fp.calls++
	if fp.err != nil {
		return nil, fp.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fp.result, nil
}

type fakeTranscriptionRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.Transcription
	created int
	failOn  error
}

func newFakeTranscriptionRepo() *fakeTranscriptionRepo {
	return &fakeTranscriptionRepo{rows: map[uuid.UUID]*domain.Transcription{}}
}

func (fr *fakeTranscriptionRepo) Create(ctx context.Context, tx *gorm.DB, t *domain.Transcription) (*domain.Transcription, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.failOn != nil {
		return nil, fr.failOn
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	fr.rows[t.ID] = &cp
	fr.created++
	return t, nil
}

func (fr *fakeTranscriptionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.TranscriptionSummary, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	var out []*domain.TranscriptionSummary
	for _, row := range fr.rows {
		if row.UserID != userID {
			continue
		}
		out = append(out, &domain.TranscriptionSummary{
			ID:               row.ID,
			Title:            row.Title,
			OriginalFilename: row.OriginalFilename,
			DurationSeconds:  row.DurationSeconds,
			Language:         row.Language,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out, nil
}

func (fr *fakeTranscriptionRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*domain.Transcription, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	row, ok := fr.rows[id]
	if !ok || row.UserID != userID {
		return nil, repos.ErrTranscriptionNotFound
	}
	cp := *row
	return &cp, nil
}

func (fr *fakeTranscriptionRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	row, ok := fr.rows[id]
	if !ok || row.UserID != userID {
		return repos.ErrTranscriptionNotFound
	}
	delete(fr.rows, id)
	return nil
}
