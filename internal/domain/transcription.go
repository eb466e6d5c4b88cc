package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Segment is one time-aligned span of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is immutable after creation; there is no update path.
type Transcription struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_transcription_user_created" json:"user_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	OriginalFilename string         `gorm:"column:original_filename" json:"original_filename"`
	StoragePath      string         `gorm:"column:storage_path" json:"storage_path,omitempty"`
	Text             string         `gorm:"column:text;type:text" json:"text"`
	Segments         datatypes.JSON `gorm:"column:segments;type:jsonb" json:"segments"`
	DurationSeconds  *float64       `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Language         *string        `gorm:"column:language" json:"language,omitempty"`
	FileSizeBytes    int64          `gorm:"column:file_size_bytes" json:"file_size_bytes"`
	CreatedAt        time.Time      `gorm:"not null;default:now();index:idx_transcription_user_created,sort:desc" json:"created_at"`
}

func (Transcription) TableName() string { return "transcription" }

// TranscriptionSummary is the list projection; it never carries text or segments.
type TranscriptionSummary struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"original_filename"`
	DurationSeconds  *float64  `json:"duration_seconds,omitempty"`
	Language         *string   `json:"language,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (t *Transcription) SetSegments(segs []Segment) error {
	if segs == nil {
		segs = []Segment{}
	}
	raw, err := json.Marshal(segs)
	if err != nil {
		return err
	}
	t.Segments = datatypes.JSON(raw)
	return nil
}

func (t *Transcription) GetSegments() ([]Segment, error) {
	if len(t.Segments) == 0 {
		return []Segment{}, nil
	}
	var segs []Segment
	if err := json.Unmarshal(t.Segments, &segs); err != nil {
		return nil, err
	}
	return segs, nil
}

// SortSegments orders segments by start time ascending, preserving the
// relative order of equal starts.
func SortSegments(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Start < segs[j].Start
	})
}
