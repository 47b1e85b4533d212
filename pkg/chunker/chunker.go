// Package chunker splits raw text into synthesizer-safe pieces. Splitting
// prefers sentence boundaries and falls back to word boundaries when a
// single sentence exceeds the size bound.
package chunker

import (
	"fmt"
	"strings"
)

// Split breaks text into ordered chunks no longer than maxSize characters,
// except when a single word exceeds maxSize, in which case that word is
// emitted verbatim as its own chunk. Embedded newlines are treated as
// spaces; sentences keep their trailing period. Whitespace-only input
// yields no chunks.
func Split(text string, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxSize)
	}

	sentences := strings.Split(strings.ReplaceAll(text, "\n", " "), ".")

	var chunks []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentSize = 0
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentence += "."
		size := len(sentence)

		// A sentence that cannot fit any chunk is split at word
		// boundaries; each piece bypasses normal accumulation.
		if size > maxSize {
			flush()
			chunks = append(chunks, SplitWords(sentence, maxSize)...)
			continue
		}

		cost := size
		if len(current) > 0 {
			cost++ // joining space
		}
		if currentSize+cost > maxSize {
			flush()
			cost = size
		}
		current = append(current, sentence)
		currentSize += cost
	}

	flush()
	return chunks, nil
}

// SplitWords greedily packs whitespace-separated words into pieces of at
// most maxSize characters, ignoring sentence punctuation. A single word
// longer than maxSize becomes its own piece, so the function terminates
// for any bound. Used both for oversized sentences and for re-chunking a
// failing synthesis chunk.
func SplitWords(text string, maxSize int) []string {
	var pieces []string
	var current []string
	currentSize := 0

	for _, word := range strings.Fields(text) {
		wordSize := len(word) + 1
		if currentSize+wordSize > maxSize {
			if len(current) > 0 {
				pieces = append(pieces, strings.Join(current, " "))
			}
			current = []string{word}
			currentSize = wordSize
		} else {
			current = append(current, word)
			currentSize += wordSize
		}
	}

	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}
	return pieces
}
