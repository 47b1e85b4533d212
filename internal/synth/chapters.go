package synth

import (
	"strings"

	"github.com/narrato/narrato/pkg/textextract"
)

// Chapter is a titled, ordered content segment of a source document.
type Chapter struct {
	Title   string
	Content string
}

// SegmentChapters scans a document's text units for chapter starts. The
// signal is deliberately lightweight: the substring "chapter" (any case)
// inside a heading-eligible unit. Each detected heading closes the chapter
// in progress and opens a new one titled with the heading text; units
// before the first heading are front matter and are skipped. A document
// with no heading signal at all becomes a single chapter titled
// "Chapter 1". Chapters come back in source order, never deduplicated.
func SegmentChapters(doc *textextract.Document) []Chapter {
	var chapters []Chapter
	var current *Chapter

	for _, u := range doc.Units {
		if u.Heading && strings.Contains(strings.ToLower(u.Text), "chapter") {
			if current != nil {
				chapters = append(chapters, *current)
			}
			current = &Chapter{Title: strings.TrimSpace(u.Text)}
			continue
		}
		if current != nil && u.Text != "" {
			if current.Content != "" {
				current.Content += "\n"
			}
			current.Content += u.Text
		}
	}
	if current != nil {
		chapters = append(chapters, *current)
	}

	if len(chapters) == 0 {
		return []Chapter{{Title: "Chapter 1", Content: doc.Text()}}
	}
	return chapters
}
