// Package synth drives chunked speech synthesis: it splits text into
// engine-safe chunks, synthesizes them strictly in order under the engine
// guard, recovers from token-limit failures by re-chunking, and stitches
// the resulting sample buffers into one waveform.
package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/pkg/chunker"
)

// retryShrinkFactor is how far a failing chunk shrinks before re-splitting
// at word boundaries.
const retryShrinkFactor = 0.6

// Request is one immutable synthesis request.
type Request struct {
	Text  string
	Voice engine.Voice
	Speed float64
	Lang  string
}

// Audio is the assembled result of a full request.
type Audio struct {
	Samples    []float64
	SampleRate int
}

// PipelineConfig tunes the chunked synthesis pipeline.
type PipelineConfig struct {
	ChunkSize  int // default: 1000 characters
	MaxRetries int // default: 3; recursion depth budget for token-limit retries
}

// Pipeline owns the chunk/synthesize/assemble flow for one engine.
type Pipeline struct {
	engine     engine.Engine
	guard      *engine.Guard
	chunkSize  int
	maxRetries int
}

func NewPipeline(e engine.Engine, g *engine.Guard, cfg PipelineConfig) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Pipeline{
		engine:     e,
		guard:      g,
		chunkSize:  cfg.ChunkSize,
		maxRetries: cfg.MaxRetries,
	}
}

// Speak synthesizes req.Text in full. Chunks are synthesized serially and
// assembled in input order; a failed chunk aborts the whole request and no
// partial audio is returned.
func (p *Pipeline) Speak(ctx context.Context, req Request) (*Audio, error) {
	chunks, err := chunker.Split(req.Text, p.chunkSize)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, &engine.ValidationError{Msg: "no speakable text"}
	}

	var out assembler
	for i, chunk := range chunks {
		samples, rate, err := p.synthesizeChunk(ctx, chunk, req, 0)
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.add(samples, rate)
	}
	return out.audio(), nil
}

// synthesizeChunk runs one engine call under the guard. On the engine's
// token-limit failure it shrinks the chunk to 60% of its character length,
// re-splits at word boundaries, and recurses with the depth counter
// incremented; the same counter is threaded through every recursive call,
// so nested splits share one budget. Any sub-piece failure discards the
// whole chunk. All other engine errors are terminal immediately.
func (p *Pipeline) synthesizeChunk(ctx context.Context, text string, req Request, depth int) ([]float64, int, error) {
	var (
		samples []float64
		rate    int
		err     error
	)
	p.guard.Do(func() {
		samples, rate, err = p.engine.Create(ctx, text, req.Voice, req.Speed, req.Lang)
	})
	if err == nil {
		return samples, rate, nil
	}
	if !engine.IsTokenLimit(err) || depth >= p.maxRetries {
		return nil, 0, err
	}

	target := int(float64(len(text)) * retryShrinkFactor)
	pieces := chunker.SplitWords(text, target)
	if len(pieces) == 0 {
		return nil, 0, err
	}
	slog.Debug("re-chunking after token limit",
		"depth", depth+1, "target_size", target, "pieces", len(pieces))

	var all []float64
	lastRate := 0
	for _, piece := range pieces {
		s, r, err := p.synthesizeChunk(ctx, piece, req, depth+1)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, s...)
		lastRate = r
	}
	return all, lastRate, nil
}

// assembler concatenates chunk segments in arrival order, which the
// pipeline guarantees is input order. The first segment's sample rate is
// authoritative; a differing later rate means the engine misbehaved and is
// reported, not resampled.
type assembler struct {
	samples []float64
	rate    int
}

func (a *assembler) add(samples []float64, rate int) {
	if a.rate == 0 {
		a.rate = rate
	} else if rate != a.rate {
		slog.Warn("sample rate mismatch between chunks", "expected", a.rate, "got", rate)
	}
	a.samples = append(a.samples, samples...)
}

func (a *assembler) audio() *Audio {
	return &Audio{Samples: a.samples, SampleRate: a.rate}
}
