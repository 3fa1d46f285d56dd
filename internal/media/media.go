// ABOUTME: Media processing: image analysis, grayscale conversion, transcription
// ABOUTME: Uses OpenAI vision/Whisper when configured, stub engines otherwise

package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"strings"

	// Decoders for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/sashabaranov/go-openai"

	"github.com/chatlingo/chatlingo/internal/store"
)

// StubTranscript is returned when no transcription engine is configured.
const StubTranscript = "<transcription unavailable in stub>"

// ImageAnalysis holds the result of analyzing an uploaded image.
type ImageAnalysis struct {
	Width  int
	Height int
	Text   *string
	Notes  *string
}

// Transcription holds the result of transcribing uploaded audio.
type Transcription struct {
	Transcript string
	Confidence *float64
	Engine     string
}

// Service analyzes user-submitted media and records media events.
type Service struct {
	store              store.Store
	openai             *openai.Client
	visionModel        string
	transcriptionModel string
	logger             *slog.Logger
}

// NewService creates a media service. client may be nil, in which case OCR is
// skipped and transcription returns a stub transcript.
func NewService(s store.Store, client *openai.Client, visionModel, transcriptionModel string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:              s,
		openai:             client,
		visionModel:        visionModel,
		transcriptionModel: transcriptionModel,
		logger:             logger.With("component", "media"),
	}
}

// AnalyzeImage decodes a base64 image, reports its dimensions and, when an
// OpenAI client is configured, extracts visible text with the vision model.
func (s *Service) AnalyzeImage(ctx context.Context, userID *string, imageB64 string) (*ImageAnalysis, error) {
	data, err := decodeBase64(imageB64)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}

	analysis := &ImageAnalysis{Width: cfg.Width, Height: cfg.Height}

	if s.openai != nil {
		text, err := s.extractText(ctx, data, format)
		if err != nil {
			s.logger.Warn("vision OCR failed", "error", err)
		} else if text != "" {
			analysis.Text = &text
		}
	}
	if analysis.Text == nil {
		notes := "Image processed. Add OCR/vision model for richer analysis."
		analysis.Notes = &notes
	}

	s.recordEvent(ctx, userID, "image_analyze", map[string]any{
		"width": cfg.Width, "height": cfg.Height,
	})
	return analysis, nil
}

// Grayscale converts a base64 image to grayscale and returns it as PNG bytes.
func Grayscale(imageB64 string) ([]byte, error) {
	data, err := decodeBase64(imageB64)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Grayscale(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// Transcribe transcribes base64 audio. Without an OpenAI client it returns a
// stub transcript so the calling flow still works end to end.
func (s *Service) Transcribe(ctx context.Context, userID *string, audioB64 string, mimeType *string) (*Transcription, error) {
	mt := "unknown"
	if mimeType != nil && *mimeType != "" {
		mt = *mimeType
	}
	s.recordEvent(ctx, userID, "audio_transcribe", map[string]any{"mime_type": mt})

	if s.openai == nil {
		return &Transcription{Transcript: StubTranscript, Engine: "stub"}, nil
	}

	data, err := decodeBase64(audioB64)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}

	resp, err := s.openai.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.transcriptionModel,
		Reader:   bytes.NewReader(data),
		FilePath: "audio" + extensionForMime(mt),
	})
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}

	return &Transcription{Transcript: resp.Text, Engine: s.transcriptionModel}, nil
}

// RecordEvent logs an arbitrary media event, used by the tool layer to track
// usage.
func (s *Service) RecordEvent(ctx context.Context, userID *string, eventType string, meta map[string]any) (string, error) {
	event := &store.MediaEvent{UserID: userID, EventType: eventType, Meta: meta}
	if err := s.store.CreateMediaEvent(ctx, event); err != nil {
		return "", fmt.Errorf("recording media event: %w", err)
	}
	return event.ID, nil
}

func (s *Service) recordEvent(ctx context.Context, userID *string, eventType string, meta map[string]any) {
	if _, err := s.RecordEvent(ctx, userID, eventType, meta); err != nil {
		s.logger.Warn("recording media event failed", "event_type", eventType, "error", err)
	}
}

// extractText asks the vision model for the text visible in the image.
func (s *Service) extractText(ctx context.Context, data []byte, format string) (string, error) {
	if format == "" {
		format = "png"
	}
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))

	resp, err := s.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract the text visible in this image. Reply with the text only, or an empty reply if there is none.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// decodeBase64 accepts both raw base64 and data URLs.
func decodeBase64(s string) ([]byte, error) {
	if idx := strings.Index(s, ","); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return data, nil
}

func extensionForMime(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "wav"):
		return ".wav"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return ".m4a"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	default:
		return ".mp3"
	}
}
