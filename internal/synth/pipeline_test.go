package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/pkg/chunker"
)

func newTestPipeline(e engine.Engine, cfg PipelineConfig) *Pipeline {
	return NewPipeline(e, engine.NewGuard(), cfg)
}

func TestSpeakAssemblesChunksInOrder(t *testing.T) {
	e := engine.NewMockEngine()
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 30})

	text := "First sentence here. Second sentence here. Third one."
	out, err := p.Speak(context.Background(), Request{Text: text, Voice: engine.Voice{ID: "af_sarah"}, Speed: 1, Lang: "en-us"})
	require.NoError(t, err)

	chunks, err := chunker.Split(text, 30)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// The engine saw exactly the chunks, in input order.
	assert.Equal(t, chunks, e.Calls())

	// Concatenated sample count is the sum of per-chunk counts.
	want := 0
	for _, c := range chunks {
		want += len(c) * e.SamplesPerChar
	}
	assert.Len(t, out.Samples, want)
	assert.Equal(t, e.SampleRate, out.SampleRate)
}

func TestSpeakMatchesIndependentChunkSyntheses(t *testing.T) {
	e := engine.NewMockEngine()
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 1000})

	sentence := strings.Repeat("abcde fghi ", 9) + "."
	text := strings.Join([]string{sentence, sentence, sentence, sentence, sentence,
		sentence, sentence, sentence, sentence, sentence,
		sentence, sentence, sentence, sentence, sentence,
		sentence, sentence, sentence, sentence, sentence,
		sentence, sentence, sentence, sentence, sentence}, " ")

	chunks, err := chunker.Split(text, 1000)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	out, err := p.Speak(context.Background(), Request{Text: text, Voice: engine.Voice{ID: "af_sarah"}, Speed: 1, Lang: "en-us"})
	require.NoError(t, err)

	total := 0
	for _, c := range chunks {
		single, err := newTestPipeline(engine.NewMockEngine(), PipelineConfig{ChunkSize: 1000}).
			Speak(context.Background(), Request{Text: c, Voice: engine.Voice{ID: "af_sarah"}, Speed: 1, Lang: "en-us"})
		require.NoError(t, err)
		total += len(single.Samples)
	}
	assert.Len(t, out.Samples, total)
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	p := newTestPipeline(engine.NewMockEngine(), PipelineConfig{})

	_, err := p.Speak(context.Background(), Request{Text: "   \n ", Voice: engine.Voice{ID: "af_sarah"}})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
}

func TestTokenLimitRetriesExhaustBudget(t *testing.T) {
	e := engine.NewMockEngine()
	e.FailWith = func(string) error {
		return &engine.TokenLimitError{Msg: "index 510 is out of bounds for axis 0 with size 510"}
	}
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 100, MaxRetries: 3})

	// A single word never splits into smaller pieces, so every retry level
	// re-enters synthesis with the same text until the budget is gone.
	_, err := p.Speak(context.Background(), Request{Text: "unsplittable.", Voice: engine.Voice{ID: "af_sarah"}})
	require.Error(t, err)
	assert.True(t, engine.IsTokenLimit(err))

	// Initial call plus exactly MaxRetries recursive attempts.
	assert.Len(t, e.Calls(), 4)
}

func TestTokenLimitRecoversBySplitting(t *testing.T) {
	e := engine.NewMockEngine()
	e.FailWith = func(text string) error {
		if len(text) > 20 {
			return &engine.TokenLimitError{Msg: "index 510 is out of bounds for axis 0 with size 510"}
		}
		return nil
	}
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 100, MaxRetries: 3})

	text := "alpha beta gamma delta epsilon zeta eta."
	out, err := p.Speak(context.Background(), Request{Text: text, Voice: engine.Voice{ID: "af_sarah"}})
	require.NoError(t, err)
	require.NotEmpty(t, out.Samples)
	assert.Equal(t, e.SampleRate, out.SampleRate)

	// Every successful piece was under the limit, and their sample counts
	// add up to the assembled total.
	total := 0
	for _, call := range e.Calls() {
		if len(call) <= 20 {
			total += len(call) * e.SamplesPerChar
		}
	}
	assert.Len(t, out.Samples, total)
}

func TestOtherEngineErrorsAreNotRetried(t *testing.T) {
	e := engine.NewMockEngine()
	e.FailWith = func(string) error {
		return errors.New("model exploded")
	}
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 100, MaxRetries: 3})

	_, err := p.Speak(context.Background(), Request{Text: "some text.", Voice: engine.Voice{ID: "af_sarah"}})
	require.Error(t, err)
	assert.False(t, engine.IsTokenLimit(err))
	assert.Len(t, e.Calls(), 1)
}

func TestSubPieceFailureDiscardsWholeChunk(t *testing.T) {
	e := engine.NewMockEngine()
	e.FailWith = func(text string) error {
		if len(text) > 20 {
			return &engine.TokenLimitError{Msg: "index 510 is out of bounds for axis 0 with size 510"}
		}
		if strings.Contains(text, "zeta") {
			return errors.New("model exploded")
		}
		return nil
	}
	p := newTestPipeline(e, PipelineConfig{ChunkSize: 100, MaxRetries: 3})

	_, err := p.Speak(context.Background(), Request{Text: "alpha beta gamma delta epsilon zeta eta.", Voice: engine.Voice{ID: "af_sarah"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model exploded")
}
