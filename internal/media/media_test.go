// ABOUTME: Tests for media analysis, grayscale conversion and transcription
// ABOUTME: Uses generated PNG fixtures, no external services

package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlingo/chatlingo/internal/store"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return NewService(s, nil, "", "", nil)
}

// testPNG returns a base64-encoded PNG with a red/blue checker pattern.
func testPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 200, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 200, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestAnalyzeImage(t *testing.T) {
	svc := setupService(t)

	analysis, err := svc.AnalyzeImage(context.Background(), nil, testPNG(t, 12, 8))
	require.NoError(t, err)
	assert.Equal(t, 12, analysis.Width)
	assert.Equal(t, 8, analysis.Height)
	assert.Nil(t, analysis.Text)
	require.NotNil(t, analysis.Notes)
	assert.Contains(t, *analysis.Notes, "Image processed")
}

func TestAnalyzeImage_DataURL(t *testing.T) {
	svc := setupService(t)

	b64 := "data:image/png;base64," + testPNG(t, 4, 4)
	analysis, err := svc.AnalyzeImage(context.Background(), nil, b64)
	require.NoError(t, err)
	assert.Equal(t, 4, analysis.Width)
}

func TestAnalyzeImage_InvalidData(t *testing.T) {
	svc := setupService(t)

	_, err := svc.AnalyzeImage(context.Background(), nil, "not base64!!!")
	assert.Error(t, err)

	_, err = svc.AnalyzeImage(context.Background(), nil, base64.StdEncoding.EncodeToString([]byte("not an image")))
	assert.Error(t, err)
}

func TestGrayscale(t *testing.T) {
	out, err := Grayscale(testPNG(t, 10, 10))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())

	// Every pixel is monochrome after conversion
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			assert.Equal(t, r, g)
			assert.Equal(t, g, b)
		}
	}
}

func TestGrayscale_InvalidData(t *testing.T) {
	_, err := Grayscale("@@@")
	assert.Error(t, err)
}

func TestTranscribe_Stub(t *testing.T) {
	svc := setupService(t)

	mime := "audio/ogg"
	tr, err := svc.Transcribe(context.Background(), nil, base64.StdEncoding.EncodeToString([]byte("audio")), &mime)
	require.NoError(t, err)
	assert.Equal(t, StubTranscript, tr.Transcript)
	assert.Equal(t, "stub", tr.Engine)
	assert.Nil(t, tr.Confidence)
}

func TestRecordEvent(t *testing.T) {
	svc := setupService(t)

	id, err := svc.RecordEvent(context.Background(), nil, "image_bw_tool", map[string]any{"size": 42})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestExtensionForMime(t *testing.T) {
	assert.Equal(t, ".ogg", extensionForMime("audio/ogg"))
	assert.Equal(t, ".wav", extensionForMime("audio/wav"))
	assert.Equal(t, ".m4a", extensionForMime("audio/mp4"))
	assert.Equal(t, ".mp3", extensionForMime("unknown"))
}
