package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("WAV")
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, f)

	f, err = ParseFormat("mp3")
	require.NoError(t, err)
	assert.Equal(t, FormatMP3, f)

	_, err = ParseFormat("aiff")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "audio/wav", FormatWAV.ContentType())
	assert.Equal(t, "audio/mpeg", FormatMP3.ContentType())
	assert.Equal(t, "audio/ogg", FormatOGG.ContentType())
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	samples := make([]float64, 2400)
	for i := range samples {
		samples[i] = 0.25 * math.Sin(float64(i)/10)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	enc := NewEncoder("")
	require.NoError(t, enc.EncodeToFile(context.Background(), path, samples, 24000, FormatWAV))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Len(t, buf.Data, len(samples))
	assert.Equal(t, 24000, int(dec.SampleRate))
	assert.Equal(t, 1, int(dec.NumChans))
}

func TestEncodeWAVClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	enc := NewEncoder("")
	require.NoError(t, enc.EncodeToFile(context.Background(), path, []float64{2.5, -3.0, 0}, 24000, FormatWAV))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, 3)
	assert.Equal(t, 32767, buf.Data[0])
	assert.Equal(t, -32767, buf.Data[1])
	assert.Equal(t, 0, buf.Data[2])
}
