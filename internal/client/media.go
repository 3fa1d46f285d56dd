// ABOUTME: Media operations: image analysis, audio transcription, event log
// ABOUTME: Mirrors the backend's /media endpoints

package client

import "context"

// ImageAnalysis is the backend's analysis of an uploaded image.
type ImageAnalysis struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Text   *string `json:"text,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Transcription is the backend's transcription of uploaded audio.
type Transcription struct {
	Transcript string   `json:"transcript"`
	Confidence *float64 `json:"confidence,omitempty"`
	Engine     string   `json:"engine"`
}

type imageAnalyzeRequest struct {
	ImageB64 string `json:"image_b64"`
}

type transcribeAudioRequest struct {
	AudioB64 string  `json:"audio_b64"`
	MimeType *string `json:"mime_type,omitempty"`
}

type mediaEventRequest struct {
	UserID    *string        `json:"user_id,omitempty"`
	EventType string         `json:"event_type"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// AnalyzeImage sends a base64 image for dimension and text analysis.
func (c *Client) AnalyzeImage(ctx context.Context, imageB64 string) (*ImageAnalysis, error) {
	var resp ImageAnalysis
	if err := c.post(ctx, "/media/image/analyze", nil, imageAnalyzeRequest{ImageB64: imageB64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TranscribeAudio sends base64 audio for transcription. mimeType may be nil.
func (c *Client) TranscribeAudio(ctx context.Context, audioB64 string, mimeType *string) (*Transcription, error) {
	var resp Transcription
	if err := c.post(ctx, "/media/audio/transcribe", nil, transcribeAudioRequest{AudioB64: audioB64, MimeType: mimeType}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogMediaEvent records a media usage event. Failures are the caller's to
// ignore; event logging is best effort.
func (c *Client) LogMediaEvent(ctx context.Context, userID *string, eventType string, meta map[string]any) error {
	return c.post(ctx, "/media/event", nil, mediaEventRequest{UserID: userID, EventType: eventType, Meta: meta}, nil)
}
