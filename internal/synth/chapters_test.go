package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narrato/narrato/pkg/textextract"
)

func TestSegmentChaptersNoHeadings(t *testing.T) {
	doc := &textextract.Document{Units: []textextract.Unit{
		{Text: "Just some text."},
		{Text: "More text."},
	}}

	chapters := SegmentChapters(doc)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Chapter 1", chapters[0].Title)
	assert.Equal(t, "Just some text.\nMore text.", chapters[0].Content)
}

func TestSegmentChaptersSourceOrder(t *testing.T) {
	doc := &textextract.Document{Units: []textextract.Unit{
		{Text: "Front matter, skipped."},
		{Text: "Chapter One: Beginnings", Heading: true},
		{Text: "First chapter body."},
		{Text: "Still the first chapter."},
		{Text: "CHAPTER Two", Heading: true},
		{Text: "Second chapter body."},
	}}

	chapters := SegmentChapters(doc)
	require.Len(t, chapters, 2)

	assert.Equal(t, "Chapter One: Beginnings", chapters[0].Title)
	assert.Equal(t, "First chapter body.\nStill the first chapter.", chapters[0].Content)
	assert.Equal(t, "CHAPTER Two", chapters[1].Title)
	assert.Equal(t, "Second chapter body.", chapters[1].Content)
}

func TestSegmentChaptersIgnoresBodyMentions(t *testing.T) {
	// "chapter" in a non-heading unit is content, not a split point.
	doc := &textextract.Document{Units: []textextract.Unit{
		{Text: "Chapter 1", Heading: true},
		{Text: "In this chapter we discuss chapters."},
	}}

	chapters := SegmentChapters(doc)
	require.Len(t, chapters, 1)
	assert.Equal(t, "In this chapter we discuss chapters.", chapters[0].Content)
}

func TestSegmentChaptersHeadingWithoutSignal(t *testing.T) {
	// A heading-eligible unit without the "chapter" substring does not
	// start a chapter.
	doc := &textextract.Document{Units: []textextract.Unit{
		{Text: "Prologue", Heading: true},
		{Text: "Chapter 1", Heading: true},
		{Text: "Body."},
	}}

	chapters := SegmentChapters(doc)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Chapter 1", chapters[0].Title)
	assert.Equal(t, "Body.", chapters[0].Content)
}

func TestSegmentChaptersTrailingChapterClosed(t *testing.T) {
	doc := &textextract.Document{Units: []textextract.Unit{
		{Text: "Chapter 1", Heading: true},
	}}

	chapters := SegmentChapters(doc)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Chapter 1", chapters[0].Title)
	assert.Empty(t, chapters[0].Content)
}
