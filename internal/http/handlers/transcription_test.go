package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
	"github.com/yungbote/whisperweb-backend/internal/platform/ctxutil"
	"github.com/yungbote/whisperweb-backend/internal/services"
)

type stubTranscriptionService struct {
	finalizeErr error
	finalized   *domain.Transcription
	getErr      error
	deleteErr   error
	listRows    []*domain.TranscriptionSummary
}

func (s *stubTranscriptionService) Finalize(ctx context.Context, userID uuid.UUID, in services.FinalizeInput) (*domain.Transcription, error) {
	if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}
	if s.finalized != nil {
		return s.finalized, nil
	}
	return &domain.Transcription{ID: uuid.New(), UserID: userID, Title: "t"}, nil
}

func (s *stubTranscriptionService) List(ctx context.Context, userID uuid.UUID) ([]*domain.TranscriptionSummary, error) {
	return s.listRows, nil
}

func (s *stubTranscriptionService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transcription, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Transcription{ID: id, UserID: userID}, nil
}

func (s *stubTranscriptionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteErr
}

func authAs(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newTestRouter(svc services.TranscriptionService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTranscriptionHandler(svc)
	g := r.Group("/api")
	if userID != uuid.Nil {
		g.Use(authAs(userID))
	}
	g.POST("/transcriptions", h.Finalize)
	g.GET("/transcriptions", h.List)
	g.GET("/transcriptions/:id", h.Get)
	g.DELETE("/transcriptions/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFinalizeStatusMapping(t *testing.T) {
	owner := uuid.New()
	body := map[string]any{"storage_path": owner.String() + "/x/a.mp3"}

	cases := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"oversize", apierr.Invalid("file_too_large", errMsg("File size must be less than 25MB")), http.StatusBadRequest},
		{"foreign path", apierr.Forbidden(errMsg("storage path not owned by caller")), http.StatusForbidden},
		{"upstream failure", apierr.Upstream("transcription_failed", errMsg("grpc unavailable: internal details")), http.StatusInternalServerError},
		{"persistence failure", apierr.Persistence("save_failed", errMsg("pq: connection refused")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubTranscriptionService{finalizeErr: tc.svcErr}, owner)
			w := doJSON(t, r, http.MethodPost, "/api/transcriptions", body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus >= 500 {
				if strings.Contains(w.Body.String(), "grpc") || strings.Contains(w.Body.String(), "pq:") {
					t.Fatalf("internal details leaked: %s", w.Body.String())
				}
				if !strings.Contains(w.Body.String(), "internal server error") {
					t.Fatalf("expected generic message, got %s", w.Body.String())
				}
			}
		})
	}
}

func TestFinalizeUnauthenticated(t *testing.T) {
	r := newTestRouter(&stubTranscriptionService{}, uuid.Nil)
	w := doJSON(t, r, http.MethodPost, "/api/transcriptions", map[string]any{"storage_path": "a/b"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", w.Code)
	}
}

func TestGetAndDeleteStatusMapping(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()

	t.Run("get unknown is 404", func(t *testing.T) {
		r := newTestRouter(&stubTranscriptionService{getErr: apierr.NotFound("transcription_not_found")}, owner)
		w := doJSON(t, r, http.MethodGet, "/api/transcriptions/"+id.String(), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d, want 404", w.Code)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		r := newTestRouter(&stubTranscriptionService{}, owner)
		w := doJSON(t, r, http.MethodGet, "/api/transcriptions/not-a-uuid", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", w.Code)
		}
	})

	t.Run("delete ok returns success envelope", func(t *testing.T) {
		r := newTestRouter(&stubTranscriptionService{}, owner)
		w := doJSON(t, r, http.MethodDelete, "/api/transcriptions/"+id.String(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		var resp map[string]bool
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp["success"] {
			t.Fatalf("expected {\"success\":true}, got %s", w.Body.String())
		}
	})

	t.Run("list wraps rows", func(t *testing.T) {
		rows := []*domain.TranscriptionSummary{{ID: uuid.New(), Title: "a"}}
		r := newTestRouter(&stubTranscriptionService{listRows: rows}, owner)
		w := doJSON(t, r, http.MethodGet, "/api/transcriptions", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		var resp struct {
			Transcriptions []json.RawMessage `json:"transcriptions"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || len(resp.Transcriptions) != 1 {
			t.Fatalf("unexpected list body: %s", w.Body.String())
		}
	})
}

type errMsg string

func (e errMsg) Error() string { return string(e) }
