package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRejectsNonPositiveSize(t *testing.T) {
	_, err := Split("some text.", 0)
	assert.Error(t, err)

	_, err = Split("some text.", -5)
	assert.Error(t, err)
}

func TestSplitPreservesContent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. A second sentence follows here.\nAnd a third one, after a newline, closes it out."

	chunks, err := Split(text, 40)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}

	got := strings.Join(strings.Fields(strings.Join(chunks, " ")), " ")
	want := strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " ")), " ")
	assert.Equal(t, want, got)
}

func TestSplitRespectsMaxSize(t *testing.T) {
	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence number %d is short.", i))
	}
	text := strings.Join(sentences, " ")

	chunks, err := Split(text, 100)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100, "chunk %q exceeds bound", c)
	}
}

func TestSplitGreedyPacking(t *testing.T) {
	chunks, err := Split("One. Two. Three.", 11)
	require.NoError(t, err)
	// "One." + " " + "Two." is 9 chars and fits; adding "Three." would not.
	assert.Equal(t, []string{"One. Two.", "Three."}, chunks)
}

func TestSplitOversizedSentenceFallsBackToWords(t *testing.T) {
	sentence := "alpha beta gamma delta epsilon zeta eta theta."

	chunks, err := Split(sentence, 12)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 12)
	}
	assert.Equal(t,
		strings.Join(strings.Fields(sentence), " "),
		strings.Join(chunks, " "))
}

func TestSplitOversizedWordEmittedVerbatim(t *testing.T) {
	word := strings.Repeat("x", 50)

	chunks, err := Split(word+".", 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, word+".", chunks[0])
}

func TestSplitSkipsWhitespaceOnlyInput(t *testing.T) {
	chunks, err := Split("   \n\t  ", 100)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = Split("... .. .", 100)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitLongTextProducesThreeChunks(t *testing.T) {
	// 25 sentences of exactly 100 characters: 2500 characters of sentence
	// text packed into a 1000-character bound gives 9 + 9 + 7 sentences.
	sentence := strings.Repeat("abcde fghi ", 9) + "." // 99 + 1 == 100
	require.Len(t, sentence, 100)

	var parts []string
	for i := 0; i < 25; i++ {
		parts = append(parts, sentence)
	}
	text := strings.Join(parts, " ")

	chunks, err := Split(text, 1000)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1000)
	}
}

func TestSplitWords(t *testing.T) {
	pieces := SplitWords("one two three four five", 10)
	assert.Equal(t, []string{"one two", "three", "four five"}, pieces)

	// A single oversized word is never truncated or dropped.
	pieces = SplitWords("supercalifragilistic", 5)
	assert.Equal(t, []string{"supercalifragilistic"}, pieces)

	assert.Empty(t, SplitWords("   ", 10))
}
