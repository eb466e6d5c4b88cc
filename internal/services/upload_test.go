package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"audio.mp3", "audio.mp3"},
		{"  my recording (final).mp3 ", "my_recording_final_.mp3"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\win.wav", "win.wav"},
		{"????", "audio"},
		{"", "audio"},
		{"...dots...mp3", "dots...mp3"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilename(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStageUpload(t *testing.T) {
	log := testLogger(t)
	owner := uuid.New()

	t.Run("happy path", func(t *testing.T) {
		bucket := newFakeBucket()
		svc := NewUploadService(log, bucket)

		staged, err := svc.StageUpload(owner, StageUploadInput{
			Filename:    "my talk.mp3",
			ContentType: "audio/mpeg",
			SizeBytes:   1024,
		})
		if err != nil {
			t.Fatalf("StageUpload: %v", err)
		}
		if !strings.HasPrefix(staged.StoragePath, owner.String()+"/") {
			t.Fatalf("storage path %q not under owner prefix", staged.StoragePath)
		}
		if !strings.HasSuffix(staged.StoragePath, "/my_talk.mp3") {
			t.Fatalf("storage path %q does not end with sanitized filename", staged.StoragePath)
		}
		if staged.UploadURL == "" {
			t.Fatal("expected signed upload url")
		}
	})

	t.Run("unknown extension rejected", func(t *testing.T) {
		svc := NewUploadService(log, newFakeBucket())
		_, err := svc.StageUpload(owner, StageUploadInput{Filename: "notes.txt", SizeBytes: 10})
		if apierr.Status(err) != 400 {
			t.Fatalf("expected 400, got %d (%v)", apierr.Status(err), err)
		}
	})

	t.Run("declared oversize rejected", func(t *testing.T) {
		svc := NewUploadService(log, newFakeBucket())
		_, err := svc.StageUpload(owner, StageUploadInput{Filename: "big.mp3", SizeBytes: MaxUploadBytes + 1})
		if apierr.Status(err) != 400 {
			t.Fatalf("expected 400, got %d (%v)", apierr.Status(err), err)
		}
		if err.Error() != "File size must be less than 25MB" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	})

	t.Run("anonymous caller rejected", func(t *testing.T) {
		svc := NewUploadService(log, newFakeBucket())
		_, err := svc.StageUpload(uuid.Nil, StageUploadInput{Filename: "a.mp3", SizeBytes: 10})
		if apierr.Status(err) != 401 {
			t.Fatalf("expected 401, got %d (%v)", apierr.Status(err), err)
		}
	})
}
