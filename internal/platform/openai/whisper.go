package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/httpx"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

// Whisper calls the OpenAI audio transcription API with verbose_json output.
type Whisper interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (*WhisperResult, error)
}

type WhisperResult struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []domain.Segment `json:"segments"`
}

type whisperClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewWhisperClient(log *logger.Logger) (Whisper, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := os.Getenv("WHISPER_MODEL")
	if model == "" {
		model = "whisper-1"
	}

	// Transcription latency scales with audio length; keep a generous default.
	timeoutSec := 180
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 2
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &whisperClient{
		log:        log.With("service", "WhisperClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type whisperHTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *whisperHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *whisperHTTPError) HTTPStatusCode() int { return e.StatusCode }

// verboseJSONResponse mirrors the verbose_json transcription payload.
type verboseJSONResponse struct {
	Task     string  `json:"task"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *whisperClient) Transcribe(ctx context.Context, audio []byte, filename, language string) (*WhisperResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	if filename == "" {
		filename = "audio"
	}

	var last error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res, err := c.doTranscribe(ctx, audio, filename, language)
		if err == nil {
			return res, nil
		}
		last = err
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			break
		}
		// The API's Retry-After wins over our own backoff when present.
		sleepFor := httpx.Backoff(attempt, 500*time.Millisecond, 8*time.Second)
		var he *whisperHTTPError
		if errors.As(err, &he) && he.RetryAfter > 0 {
			sleepFor = he.RetryAfter
		}
		c.log.Warn("whisper call failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"sleep_ms", sleepFor.Milliseconds(),
		)
		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, last
}

func (c *whisperClient) doTranscribe(ctx context.Context, audio []byte, filename, language string) (*WhisperResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := mw.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return nil, fmt.Errorf("write timestamp_granularities field: %w", err)
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		he := &whisperHTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
		if httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			he.RetryAfter = httpx.RetryAfterDuration(resp, 0, 30*time.Second)
		}
		return nil, he
	}

	var parsed verboseJSONResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode verbose_json: %w", err)
	}

	out := &WhisperResult{
		Text:     parsed.Text,
		Language: parsed.Language,
		Duration: parsed.Duration,
		Segments: make([]domain.Segment, 0, len(parsed.Segments)),
	}
	for _, seg := range parsed.Segments {
		out.Segments = append(out.Segments, domain.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
