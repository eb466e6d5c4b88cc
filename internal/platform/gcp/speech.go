package gcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/whisperweb-backend/internal/domain"
	"github.com/yungbote/whisperweb-backend/internal/platform/ctxutil"
	"github.com/yungbote/whisperweb-backend/internal/platform/logger"
)

type Speech interface {
	TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string, cfg SpeechConfig) (*SpeechResult, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode string
	Model        string

	EnableAutomaticPunctuation bool

	SampleRateHertz   int
	AudioChannelCount int

	// Optional override; inferred from mime/extension when unspecified.
	Encoding speechpb.RecognitionConfig_AudioEncoding

	// Window used to group word offsets into segments.
	SegmentWindowSec float64
}

type SpeechResult struct {
	Provider        string           `json:"provider"`
	Text            string           `json:"text"`
	Segments        []domain.Segment `json:"segments,omitempty"`
	DurationSeconds float64          `json:"duration_seconds"`
	Language        string           `json:"language,omitempty"`
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Speech")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &speechService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string, cfg SpeechConfig) (*SpeechResult, error) {
	ctx = ctxutil.Default(ctx)

	if len(audio) == 0 {
		return &SpeechResult{Provider: "gcp_speech", Text: ""}, nil
	}

	rcfg := buildSpeechRecognitionConfig(mimeType, cfg)
	req := &speechpb.LongRunningRecognizeRequest{
		Config: rcfg,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}

	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize(bytes): %w", err)
	}

	return parseSpeechResponse("gcp_speech", resp, cfg), nil
}

func buildSpeechRecognitionConfig(mimeType string, cfg SpeechConfig) *speechpb.RecognitionConfig {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}

	enc := cfg.Encoding
	if enc == speechpb.RecognitionConfig_ENCODING_UNSPECIFIED {
		enc = inferSpeechEncoding(mimeType)
	}

	return &speechpb.RecognitionConfig{
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		EnableAutomaticPunctuation: cfg.EnableAutomaticPunctuation,
		EnableWordTimeOffsets:      true,
		Encoding:                   enc,
		SampleRateHertz:            int32(max0(cfg.SampleRateHertz)),
		AudioChannelCount:          int32(max0(cfg.AudioChannelCount)),
	}
}

func inferSpeechEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(m))

	switch {
	case strings.Contains(m, "wav") || ext == ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac") || ext == ".flac":
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3") || strings.Contains(m, "mpeg") || ext == ".mp3":
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg") || ext == ".ogg" || ext == ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

type speechWord struct {
	w string
	s float64
	e float64
}

func parseSpeechResponse(provider string, resp *speechpb.LongRunningRecognizeResponse, cfg SpeechConfig) *SpeechResult {
	out := &SpeechResult{
		Provider: provider,
		Language: cfg.LanguageCode,
	}

	if resp == nil || len(resp.Results) == 0 {
		return out
	}

	words := []speechWord{}
	var full strings.Builder

	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if strings.TrimSpace(alt.Transcript) == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(strings.TrimSpace(alt.Transcript))

		if lang := strings.TrimSpace(r.LanguageCode); lang != "" {
			out.Language = lang
		}

		for _, ww := range alt.Words {
			if ww == nil {
				continue
			}
			words = append(words, speechWord{
				w: ww.Word,
				s: durToSec(ww.StartTime),
				e: durToSec(ww.EndTime),
			})
		}
	}

	out.Text = strings.TrimSpace(full.String())
	out.Segments = groupByTime(words, cfg.SegmentWindowSec)
	if len(out.Segments) == 0 && out.Text != "" {
		out.Segments = []domain.Segment{{Start: 0, End: 0, Text: out.Text}}
	}
	if n := len(words); n > 0 {
		out.DurationSeconds = words[n-1].e
	}
	return out
}

// groupByTime buckets word offsets into fixed windows so downstream always
// sees the canonical {start,end,text} shape.
func groupByTime(words []speechWord, windowSec float64) []domain.Segment {
	if len(words) == 0 {
		return nil
	}
	if windowSec <= 0 {
		windowSec = 10
	}

	segs := []domain.Segment{}
	curStart := words[0].s
	curEnd := words[0].e
	var buf strings.Builder

	flush := func() {
		txt := strings.TrimSpace(buf.String())
		if txt == "" {
			return
		}
		segs = append(segs, domain.Segment{Start: curStart, End: curEnd, Text: txt})
		buf.Reset()
	}

	for _, w := range words {
		if (w.s-curStart) >= windowSec && buf.Len() > 0 {
			flush()
			curStart = w.s
			curEnd = w.e
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(w.w)
		if w.e > curEnd {
			curEnd = w.e
		}
	}
	flush()
	return segs
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (s *speechService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}

func max0(x int) int {
	if x < 0 {
		return 0
	}
	return x
}
