// Package textextract pulls plain text out of uploaded documents. Output
// is an ordered sequence of text units (pages for PDFs, body/heading
// elements for EPUBs) so that a chapter scan can run over them; flat text
// is available by joining the units.
package textextract

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Unit is one extracted text fragment in source order. Heading marks units
// eligible to start a chapter in the heading scan: every PDF page (the
// scan looks at whole pages, as the layout gives nothing finer) and EPUB
// h1/h2 elements.
type Unit struct {
	Text    string
	Heading bool
}

// Document is the ordered extraction result for one source file.
type Document struct {
	Units []Unit
	Pages int
}

// Text returns the document's full text in source order.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Units))
	for _, u := range d.Units {
		if u.Text != "" {
			parts = append(parts, u.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// SupportedExtensions lists the file extensions ExtractFile accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".epub", ".pdf"}
}

// Supported reports whether ext (with leading dot, any case) is handled.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".epub", ".pdf":
		return true
	}
	return false
}

// ExtractFile extracts text units from the file at path, dispatching on
// its extension. Unsupported extensions are rejected before any parsing.
func ExtractFile(path string) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return extractTXT(path)
	case ".epub":
		return extractEPUB(path)
	case ".pdf":
		return extractPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractTXT(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	doc := &Document{Pages: 1}
	if text := strings.TrimSpace(string(data)); text != "" {
		doc.Units = append(doc.Units, Unit{Text: text})
	}
	return doc, nil
}

func extractPDF(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat PDF: %w", err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse PDF: %w", err)
	}

	doc := &Document{Pages: reader.NumPage()}
	for i := 1; i <= doc.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Units = append(doc.Units, Unit{Text: text, Heading: true})
	}
	return doc, nil
}

func extractEPUB(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}
	defer zr.Close()

	doc := &Document{}
	for _, f := range zr.File {
		if !isEPUBContent(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		root, err := html.Parse(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}

		var body strings.Builder
		walkHTML(root, doc, &body)
		flushBody(doc, &body)
		doc.Pages++
	}
	return doc, nil
}

// isEPUBContent matches the XHTML content documents inside the container,
// skipping the OPF/NCX metadata and any media.
func isEPUBContent(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xhtml", ".html", ".htm":
		return true
	}
	return false
}

// walkHTML accumulates body text and emits h1/h2 elements as heading
// units, flushing pending body text before each heading so source order
// is preserved.
func walkHTML(n *html.Node, doc *Document, body *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2":
			flushBody(doc, body)
			if text := collapseText(n); text != "" {
				doc.Units = append(doc.Units, Unit{Text: text, Heading: true})
			}
			return
		case "script", "style", "head":
			return
		}
	}
	if n.Type == html.TextNode {
		body.WriteString(n.Data)
		body.WriteString(" ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, doc, body)
	}
}

func flushBody(doc *Document, body *strings.Builder) {
	text := strings.Join(strings.Fields(body.String()), " ")
	body.Reset()
	if text != "" {
		doc.Units = append(doc.Units, Unit{Text: text})
	}
}

func collapseText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
