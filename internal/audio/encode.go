// Package audio turns assembled sample buffers into encoded containers.
// WAV is written natively; other formats are transcoded from a WAV
// intermediate by ffmpeg.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Format is a supported output container.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
	FormatAAC  Format = "aac"
)

// ParseFormat validates a requested output format. Called before any
// synthesis work so unsupported targets are rejected upfront.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatWAV, FormatMP3, FormatFLAC, FormatOGG, FormatAAC:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: wav, mp3, flac, ogg, aac)", s)
	}
}

// ContentType returns the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatFLAC:
		return "audio/flac"
	case FormatOGG:
		return "audio/ogg"
	case FormatAAC:
		return "audio/aac"
	default:
		return "audio/wav"
	}
}

// WriteWAV writes float samples in [-1, 1] as 16-bit mono PCM.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write PCM: %w", err)
	}
	return enc.Close()
}

// Encoder writes synthesized audio to disk in a target format.
type Encoder struct {
	ffmpegPath string
}

// NewEncoder creates an Encoder; ffmpegPath defaults to "ffmpeg" on PATH.
func NewEncoder(ffmpegPath string) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Encoder{ffmpegPath: ffmpegPath}
}

// EncodeToFile writes samples at path in the given format. Non-WAV targets
// go through a scratch WAV next to the destination, removed before return.
func (e *Encoder) EncodeToFile(ctx context.Context, path string, samples []float64, sampleRate int, format Format) error {
	if format == FormatWAV {
		return writeWAVFile(path, samples, sampleRate)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "narrato_pcm_*.wav")
	if err != nil {
		return fmt.Errorf("create scratch wav: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteWAV(tmp, samples, sampleRate); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close scratch wav: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, "-y", "-loglevel", "error", "-i", tmpName, path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return fmt.Errorf("ffmpeg transcode to %s failed: %w (stderr: %s)", format, err, stderr.String())
	}
	return nil
}

func writeWAVFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
