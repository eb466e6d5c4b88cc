package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
	"github.com/yungbote/whisperweb-backend/internal/platform/envutil"
	"github.com/yungbote/whisperweb-backend/internal/platform/gcp"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

// MaxUploadBytes is the hard cap on a single audio file.
const MaxUploadBytes int64 = 25 << 20

// Clients key on this exact message; do not reword it.
const oversizeMessage = "File size must be less than 25MB"

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
	".ogg":  true,
	".oga":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips path components and squeezes everything outside
// [A-Za-z0-9._-] to a single underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "\\", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "audio"
	}
	return name
}

// StagedUpload is what a client needs to PUT the file itself: the object key
// it must later echo back on finalize, and a short-lived signed URL.
type StagedUpload struct {
	StoragePath string    `json:"storage_path"`
	UploadURL   string    `json:"upload_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type StageUploadInput struct {
	Filename    string
	ContentType string
	SizeBytes   int64
}

type UploadService interface {
	StageUpload(userID uuid.UUID, in StageUploadInput) (*StagedUpload, error)
}

type uploadService struct {
	log    *logger.Logger
	bucket gcp.BucketService
	ttl    time.Duration
}

func NewUploadService(log *logger.Logger, bucket gcp.BucketService) UploadService {
	ttlSec := envutil.Int("UPLOAD_URL_TTL_SECONDS", 900)
	return &uploadService{
		log:    log.With("service", "UploadService"),
		bucket: bucket,
		ttl:    time.Duration(ttlSec) * time.Second,
	}
}

func (s *uploadService) StageUpload(userID uuid.UUID, in StageUploadInput) (*StagedUpload, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("missing user"))
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, apierr.Invalid("missing_filename", fmt.Errorf("filename is required"))
	}
	if in.SizeBytes > MaxUploadBytes {
		return nil, apierr.Invalid("file_too_large", errors.New(oversizeMessage))
	}

	safe := SanitizeFilename(in.Filename)
	ext := strings.ToLower(filepath.Ext(safe))
	if !allowedExtensions[ext] {
		return nil, apierr.Invalid("unsupported_file_type", fmt.Errorf("unsupported file type %q", ext))
	}

	key := fmt.Sprintf("%s/%s/%s", userID.String(), uuid.NewString(), safe)
	expires := time.Now().Add(s.ttl)

	url, err := s.bucket.SignedUploadURL(key, in.ContentType, s.ttl)
	if err != nil {
		s.log.Error("failed to sign upload url", "error", err)
		return nil, apierr.Upstream("storage_unavailable", err)
	}

	return &StagedUpload{
		StoragePath: key,
		UploadURL:   url,
		ExpiresAt:   expires,
	}, nil
}
