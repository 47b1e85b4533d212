package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoiceSingle(t *testing.T) {
	e := NewMockEngine()

	v, err := ParseVoice(context.Background(), e, "af_sarah")
	require.NoError(t, err)
	assert.Equal(t, "af_sarah", v.ID)
	assert.Nil(t, v.Style)
}

func TestParseVoiceUnknown(t *testing.T) {
	e := NewMockEngine()

	_, err := ParseVoice(context.Background(), e, "nope")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseVoiceBlendWeighted(t *testing.T) {
	e := NewMockEngine()

	// styleA = {1,0,2}, styleB = {0,1,4}: 0.3*A + 0.7*B
	v, err := ParseVoice(context.Background(), e, "af_sarah:30,am_adam:70")
	require.NoError(t, err)
	require.Len(t, v.Style, 3)
	assert.InDelta(t, 0.3, v.Style[0], 1e-9)
	assert.InDelta(t, 0.7, v.Style[1], 1e-9)
	assert.InDelta(t, 0.3*2+0.7*4, v.Style[2], 1e-9)
}

func TestParseVoiceBlendRenormalizes(t *testing.T) {
	e := NewMockEngine()

	// {20,20} rescales to {50,50}.
	v, err := ParseVoice(context.Background(), e, "af_sarah:20,am_adam:20")
	require.NoError(t, err)
	require.Len(t, v.Style, 3)
	assert.InDelta(t, 0.5, v.Style[0], 1e-9)
	assert.InDelta(t, 0.5, v.Style[1], 1e-9)
	assert.InDelta(t, 0.5*2+0.5*4, v.Style[2], 1e-9)
}

func TestParseVoiceBlendDefaultWeights(t *testing.T) {
	e := NewMockEngine()

	v, err := ParseVoice(context.Background(), e, "af_sarah,am_adam")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v.Style[0], 1e-9)
}

func TestParseVoiceBlendComponentCount(t *testing.T) {
	e := NewMockEngine()

	_, err := ParseVoice(context.Background(), e, "af_sarah:10,am_adam:10,bf_emma:80")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseVoiceBlendUnknownComponent(t *testing.T) {
	e := NewMockEngine()

	_, err := ParseVoice(context.Background(), e, "af_sarah:50,ghost:50")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidateLanguage(t *testing.T) {
	e := NewMockEngine()

	assert.NoError(t, ValidateLanguage(context.Background(), e, "en-us"))

	err := ValidateLanguage(context.Background(), e, "fr-fr")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
