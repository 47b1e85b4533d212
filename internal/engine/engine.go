// Package engine defines the contract with the external synthesis model
// and the client used to reach it. The model itself (Kokoro ONNX weights)
// lives in a sidecar process; this package treats it as a black box that
// turns text into raw audio samples.
package engine

import "context"

// Voice tells the engine what to speak with: a named voice from the
// engine's catalog, or a pre-blended style vector when Style is set.
type Voice struct {
	ID    string
	Style []float64
}

// Engine is the interface to the synthesis model.
//
// Create returns the raw sample sequence and its sample rate for one piece
// of text. A *TokenLimitError indicates the text overflowed the model's
// token window even though it was under the character bound; callers may
// recover by re-chunking. Any other error is terminal for that piece.
type Engine interface {
	Create(ctx context.Context, text string, voice Voice, speed float64, lang string) ([]float64, int, error)
	Voices(ctx context.Context) ([]string, error)
	Languages(ctx context.Context) ([]string, error)
	VoiceStyle(ctx context.Context, voiceID string) ([]float64, error)
}

// ValidateLanguage checks lang against the engine's reported set.
func ValidateLanguage(ctx context.Context, e Engine, lang string) error {
	langs, err := e.Languages(ctx)
	if err != nil {
		return err
	}
	for _, l := range langs {
		if l == lang {
			return nil
		}
	}
	return &ValidationError{Msg: "unsupported language: " + lang}
}
