package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/envutil"
	"github.com/yungbote/whisperweb-backend/internal/platform/gcp"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
	"github.com/yungbote/whisperweb-backend/internal/platform/openai"
)

// SpeechResult is the provider-neutral transcription outcome.
type SpeechResult struct {
	Text            string
	Segments        []domain.Segment
	DurationSeconds *float64
	Language        *string
}

// SpeechProvider is the single external speech-to-text boundary. The caller
// owns the deadline; implementations must respect ctx cancellation.
type SpeechProvider interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (*SpeechResult, error)
}

// NewSpeechProviderFromEnv selects the provider via SPEECH_PROVIDER
// (openai|gcp, default openai).
func NewSpeechProviderFromEnv(log *logger.Logger) (SpeechProvider, error) {
	switch strings.ToLower(envutil.String("SPEECH_PROVIDER", "openai")) {
	case "gcp":
		client, err := gcp.NewSpeech(log)
		if err != nil {
			return nil, fmt.Errorf("init gcp speech: %w", err)
		}
		return NewGCPSpeechProvider(log, client), nil
	case "openai":
		client, err := openai.NewWhisperClient(log)
		if err != nil {
			return nil, fmt.Errorf("init whisper client: %w", err)
		}
		return NewWhisperSpeechProvider(log, client), nil
	default:
		return nil, fmt.Errorf("unknown SPEECH_PROVIDER %q", envutil.String("SPEECH_PROVIDER", "openai"))
	}
}

type whisperSpeechProvider struct {
	log    *logger.Logger
	client openai.Whisper
}

func NewWhisperSpeechProvider(log *logger.Logger, client openai.Whisper) SpeechProvider {
	return &whisperSpeechProvider{
		log:    log.With("service", "WhisperSpeechProvider"),
		client: client,
	}
}

func (p *whisperSpeechProvider) Transcribe(ctx context.Context, audio []byte, filename, language string) (*SpeechResult, error) {
	res, err := p.client.Transcribe(ctx, audio, filename, language)
	if err != nil {
		return nil, err
	}
	out := &SpeechResult{
		Text:     res.Text,
		Segments: res.Segments,
	}
	if res.Duration > 0 {
		d := res.Duration
		out.DurationSeconds = &d
	}
	if res.Language != "" {
		l := res.Language
		out.Language = &l
	}
	return out, nil
}

type gcpSpeechProvider struct {
	log    *logger.Logger
	client gcp.Speech
}

func NewGCPSpeechProvider(log *logger.Logger, client gcp.Speech) SpeechProvider {
	return &gcpSpeechProvider{
		log:    log.With("service", "GCPSpeechProvider"),
		client: client,
	}
}

func (p *gcpSpeechProvider) Transcribe(ctx context.Context, audio []byte, filename, language string) (*SpeechResult, error) {
	cfg := gcp.SpeechConfig{
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	res, err := p.client.TranscribeAudioBytes(ctx, audio, filepath.Ext(filename), cfg)
	if err != nil {
		return nil, err
	}
	out := &SpeechResult{
		Text:     res.Text,
		Segments: res.Segments,
	}
	if res.DurationSeconds > 0 {
		d := res.DurationSeconds
		out.DurationSeconds = &d
	}
	if res.Language != "" {
		l := res.Language
		out.Language = &l
	}
	return out, nil
}
