package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// weightEpsilon guards the renormalization check against float noise;
// weights summing to 100 within this tolerance are used as given.
const weightEpsilon = 1e-6

const defaultBlendWeight = 50.0

// ParseVoice resolves a voice spec against the engine's catalog. A spec is
// either a single voice name ("af_sarah") or a two-way blend
// ("af_sarah:30,am_adam:70") with weights on a 0-100 scale; a component
// without an explicit weight gets 50. Weights not summing to 100 are
// rescaled proportionally, and the blended style is the weighted sum of
// the two component style vectors.
func ParseVoice(ctx context.Context, e Engine, spec string) (Voice, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Voice{}, &ValidationError{Msg: "voice is required"}
	}

	known, err := e.Voices(ctx)
	if err != nil {
		return Voice{}, fmt.Errorf("fetch voice catalog: %w", err)
	}
	supported := make(map[string]bool, len(known))
	for _, v := range known {
		supported[v] = true
	}

	if !strings.Contains(spec, ",") {
		if !supported[spec] {
			return Voice{}, &ValidationError{Msg: "unsupported voice: " + spec}
		}
		return Voice{ID: spec}, nil
	}

	var names []string
	var weights []float64
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		name, weight, hasWeight := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		w := defaultBlendWeight
		if hasWeight {
			w, err = strconv.ParseFloat(strings.TrimSpace(weight), 64)
			if err != nil {
				return Voice{}, &ValidationError{Msg: "invalid blend weight in " + pair}
			}
		}
		names = append(names, name)
		weights = append(weights, w)
	}

	if len(names) != 2 {
		return Voice{}, &ValidationError{Msg: "voice blending requires exactly two voices"}
	}
	for _, name := range names {
		if !supported[name] {
			return Voice{}, &ValidationError{Msg: "unsupported voice: " + name}
		}
	}

	total := weights[0] + weights[1]
	if total <= 0 {
		return Voice{}, &ValidationError{Msg: "blend weights must be positive"}
	}
	if math.Abs(total-100) > weightEpsilon {
		weights[0] *= 100 / total
		weights[1] *= 100 / total
	}

	styleA, err := e.VoiceStyle(ctx, names[0])
	if err != nil {
		return Voice{}, fmt.Errorf("fetch style for %s: %w", names[0], err)
	}
	styleB, err := e.VoiceStyle(ctx, names[1])
	if err != nil {
		return Voice{}, fmt.Errorf("fetch style for %s: %w", names[1], err)
	}
	if len(styleA) != len(styleB) {
		return Voice{}, fmt.Errorf("style vector length mismatch: %d vs %d", len(styleA), len(styleB))
	}

	blend := make([]float64, len(styleA))
	for i := range blend {
		blend[i] = styleA[i]*(weights[0]/100) + styleB[i]*(weights[1]/100)
	}
	return Voice{ID: spec, Style: blend}, nil
}
