package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/whisperweb-backend/internal/data/repos"
	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
	"github.com/yungbote/whisperweb-backend/internal/platform/envutil"
	"github.com/yungbote/whisperweb-backend/internal/platform/gcp"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

// FinalizeInput is the metadata-only finalize payload. The audio bytes never
// pass through this service's HTTP surface; they are fetched from the blob
// store by storage path.
type FinalizeInput struct {
	StoragePath      string
	OriginalFilename string
	Title            string
	FileSizeBytes    int64
	Language         string
}

type TranscriptionService interface {
	Finalize(ctx context.Context, userID uuid.UUID, in FinalizeInput) (*domain.Transcription, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.TranscriptionSummary, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transcription, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type transcriptionService struct {
	log      *logger.Logger
	bucket   gcp.BucketService
	provider SpeechProvider
	repo     repos.TranscriptionRepo

	transcribeTimeout time.Duration
	verifyContent     bool
	sem               *semaphore.Weighted
}

func NewTranscriptionService(
	log *logger.Logger,
	bucket gcp.BucketService,
	provider SpeechProvider,
	repo repos.TranscriptionRepo,
) TranscriptionService {
	timeoutSec := envutil.Int("TRANSCRIBE_TIMEOUT_SECONDS", 300)
	maxConcurrent := envutil.Int64("TRANSCRIBE_MAX_CONCURRENT", 4)
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &transcriptionService{
		log:               log.With("service", "TranscriptionService"),
		bucket:            bucket,
		provider:          provider,
		repo:              repo,
		transcribeTimeout: time.Duration(timeoutSec) * time.Second,
		verifyContent:     envutil.Bool("UPLOAD_VERIFY_CONTENT", true),
		sem:               semaphore.NewWeighted(maxConcurrent),
	}
}

func (s *transcriptionService) Finalize(ctx context.Context, userID uuid.UUID, in FinalizeInput) (*domain.Transcription, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("missing user"))
	}
	if strings.TrimSpace(in.StoragePath) == "" {
		return nil, apierr.Invalid("missing_storage_path", fmt.Errorf("storage_path is required"))
	}
	if in.FileSizeBytes > MaxUploadBytes {
		return nil, apierr.Invalid("file_too_large", errors.New(oversizeMessage))
	}
	if !OwnsStoragePath(in.StoragePath, userID) {
		return nil, apierr.Forbidden(fmt.Errorf("storage path not owned by caller"))
	}

	filename := in.OriginalFilename
	if filename == "" {
		filename = filepath.Base(in.StoragePath)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, apierr.Upstream("transcription_busy", err)
	}
	defer s.sem.Release(1)

	audio, err := s.downloadAudio(ctx, in.StoragePath)
	if err != nil {
		return nil, err
	}
	if s.verifyContent {
		if err := s.checkAudioContent(audio); err != nil {
			return nil, err
		}
	}

	tctx, cancel := context.WithTimeout(ctx, s.transcribeTimeout)
	defer cancel()

	started := time.Now()
	result, err := s.provider.Transcribe(tctx, audio, filename, in.Language)
	if err != nil {
		s.log.Error("transcription failed",
			"storage_path", in.StoragePath,
			"elapsed_ms", time.Since(started).Milliseconds(),
			"error", err,
		)
		return nil, apierr.Upstream("transcription_failed", err)
	}

	segments := result.Segments
	if segments == nil {
		segments = []domain.Segment{}
	}
	domain.SortSegments(segments)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if title == "" {
		title = "Untitled transcription"
	}

	record := &domain.Transcription{
		UserID:           userID,
		Title:            title,
		OriginalFilename: filename,
		StoragePath:      in.StoragePath,
		Text:             result.Text,
		DurationSeconds:  result.DurationSeconds,
		Language:         result.Language,
		FileSizeBytes:    int64(len(audio)),
	}
	if err := record.SetSegments(segments); err != nil {
		return nil, apierr.Persistence("save_failed", err)
	}

	saved, err := s.repo.Create(ctx, nil, record)
	if err != nil {
		s.log.Error("failed to persist transcription", "error", err)
		return nil, apierr.Persistence("save_failed", err)
	}

	s.log.Info("transcription finalized",
		"transcription_id", saved.ID,
		"user_id", userID,
		"segments", len(segments),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return saved, nil
}

func (s *transcriptionService) downloadAudio(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.bucket.DownloadFile(ctx, key)
	if err != nil {
		s.log.Error("failed to open staged upload", "storage_path", key, "error", err)
		return nil, apierr.Upstream("storage_download_failed", err)
	}
	defer rc.Close()

	// Read one byte past the cap so an oversized object is detected even when
	// the client lied about file_size_bytes.
	audio, err := io.ReadAll(io.LimitReader(rc, MaxUploadBytes+1))
	if err != nil {
		return nil, apierr.Upstream("storage_download_failed", err)
	}
	if int64(len(audio)) > MaxUploadBytes {
		return nil, apierr.Invalid("file_too_large", errors.New(oversizeMessage))
	}
	if len(audio) == 0 {
		return nil, apierr.Invalid("empty_file", fmt.Errorf("staged object is empty"))
	}
	return audio, nil
}

func (s *transcriptionService) checkAudioContent(audio []byte) error {
	detected := mimetype.Detect(audio)
	for t := detected; t != nil; t = t.Parent() {
		mt := t.String()
		if strings.HasPrefix(mt, "audio/") ||
			mt == "video/mp4" ||
			mt == "video/webm" ||
			mt == "video/mpeg" ||
			mt == "application/ogg" {
			return nil
		}
	}
	return apierr.Invalid("unsupported_file_type",
		fmt.Errorf("detected content type %q is not an accepted audio format", detected.String()))
}

func (s *transcriptionService) List(ctx context.Context, userID uuid.UUID) ([]*domain.TranscriptionSummary, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("missing user"))
	}
	results, err := s.repo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Persistence("list_failed", err)
	}
	return results, nil
}

func (s *transcriptionService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transcription, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("missing user"))
	}
	result, err := s.repo.GetByID(ctx, nil, id, userID)
	if errors.Is(err, repos.ErrTranscriptionNotFound) {
		return nil, apierr.NotFound("transcription_not_found")
	}
	if err != nil {
		return nil, apierr.Persistence("get_failed", err)
	}
	return result, nil
}

// Delete removes the record and makes a best-effort pass at the blob. A blob
// that outlives its record is an acceptable orphan; a record that outlives a
// deleted blob is not, so the row delete decides the outcome.
func (s *transcriptionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("missing user"))
	}

	existing, err := s.repo.GetByID(ctx, nil, id, userID)
	if errors.Is(err, repos.ErrTranscriptionNotFound) {
		return apierr.NotFound("transcription_not_found")
	}
	if err != nil {
		return apierr.Persistence("delete_failed", err)
	}

	if existing.StoragePath != "" {
		if err := s.bucket.DeleteFile(ctx, existing.StoragePath); err != nil {
			s.log.Warn("failed to delete blob, record delete proceeds",
				"transcription_id", id,
				"storage_path", existing.StoragePath,
				"error", err,
			)
		}
	}

	if err := s.repo.DeleteByID(ctx, nil, id, userID); err != nil {
		if errors.Is(err, repos.ErrTranscriptionNotFound) {
			return apierr.NotFound("transcription_not_found")
		}
		return apierr.Persistence("delete_failed", err)
	}
	return nil
}
