package engine

import (
	"context"
	"sync"
)

// MockEngine is a deterministic in-memory Engine for tests. Create yields
// SamplesPerChar samples per input character so callers can assert on
// concatenated sample counts.
type MockEngine struct {
	SampleRate     int
	SamplesPerChar int
	VoiceList      []string
	LanguageList   []string
	StyleVectors   map[string][]float64

	// FailWith, when set, is consulted before producing samples; a non-nil
	// return fails that Create call.
	FailWith func(text string) error

	mu    sync.Mutex
	calls []string
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		SampleRate:     24000,
		SamplesPerChar: 2,
		VoiceList:      []string{"af_sarah", "am_adam", "bf_emma"},
		LanguageList:   []string{"en-us", "en-gb"},
		StyleVectors: map[string][]float64{
			"af_sarah": {1, 0, 2},
			"am_adam":  {0, 1, 4},
			"bf_emma":  {2, 2, 2},
		},
	}
}

func (m *MockEngine) Create(ctx context.Context, text string, voice Voice, speed float64, lang string) ([]float64, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.FailWith != nil {
		if err := m.FailWith(text); err != nil {
			return nil, 0, err
		}
	}

	samples := make([]float64, len(text)*m.SamplesPerChar)
	return samples, m.SampleRate, nil
}

func (m *MockEngine) Voices(ctx context.Context) ([]string, error) {
	return m.VoiceList, nil
}

func (m *MockEngine) Languages(ctx context.Context) ([]string, error) {
	return m.LanguageList, nil
}

func (m *MockEngine) VoiceStyle(ctx context.Context, voiceID string) ([]float64, error) {
	style, ok := m.StyleVectors[voiceID]
	if !ok {
		return nil, &ValidationError{Msg: "unsupported voice: " + voiceID}
	}
	return style, nil
}

// Calls returns the texts passed to Create, in call order.
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
