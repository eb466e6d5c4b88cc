package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

// ListLimit caps the history listing; the sole sort key is created_at.
const ListLimit = 50

// ErrTranscriptionNotFound covers both absent rows and rows owned by another
// user; callers cannot distinguish the two.
var ErrTranscriptionNotFound = errors.New("transcription not found")

type TranscriptionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, t *domain.Transcription) (*domain.Transcription, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.TranscriptionSummary, error)
	GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*domain.Transcription, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
}

type transcriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptionRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptionRepo {
	repoLog := baseLog.With("repo", "TranscriptionRepo")
	return &transcriptionRepo{db: db, log: repoLog}
}

func (r *transcriptionRepo) Create(ctx context.Context, tx *gorm.DB, t *domain.Transcription) (*domain.Transcription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if t == nil {
		return nil, errors.New("nil transcription")
	}
	if t.UserID == uuid.Nil {
		return nil, errors.New("transcription has no owner")
	}

	if err := transaction.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transcriptionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.TranscriptionSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.TranscriptionSummary
	if err := transaction.WithContext(ctx).
		Model(&domain.Transcription{}).
		Select("id", "title", "original_filename", "duration_seconds", "language", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(ListLimit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *transcriptionRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*domain.Transcription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Transcription
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTranscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *transcriptionRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Transcription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTranscriptionNotFound
	}
	return nil
}
