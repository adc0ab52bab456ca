// Package render turns extracted documents into text, Markdown, HTML and
// JSON views.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/tsawler/deckparse/chart"
	"github.com/tsawler/deckparse/pptx"
)

// Formats accepted by Write.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Write renders doc in the named format.
func Write(w io.Writer, doc *pptx.Document, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatText, "txt":
		_, err := io.WriteString(w, Text(doc))
		return err
	case FormatMarkdown, "md":
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(doc))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatText, "txt":
		return ".txt"
	case FormatMarkdown, "md":
		return ".md"
	case FormatHTML:
		return ".html"
	}
	return ".json"
}

// Text renders the document as plain text with ASCII tables.
func Text(doc *pptx.Document) string {
	var b strings.Builder
	for i, s := range doc.Slides {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== Slide %d ===\n", s.Number)
		for _, sh := range s.Shapes {
			writeShapeText(&b, sh)
		}
		if s.Notes != "" {
			b.WriteString("\nNotes:\n")
			b.WriteString(s.Notes)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeShapeText(b *strings.Builder, sh pptx.Shape) {
	switch c := sh.Content.(type) {
	case *pptx.TextContent:
		writeParagraphs(b, c.Paragraphs, "  ")
	case *pptx.WordArtContent:
		writeParagraphs(b, c.Paragraphs, "  ")
	case *pptx.TableContent:
		b.WriteString(newGrid(c).String())
	case *pptx.ChartContent:
		writeChartText(b, c)
	case *pptx.SmartArtContent:
		writeSmartArt(b, c.Nodes, 0, "- ")
	case *pptx.PictureContent:
		if c.Description != "" {
			fmt.Fprintf(b, "[image: %s]\n", c.Description)
		}
	}
}

func writeParagraphs(b *strings.Builder, paras []pptx.Paragraph, indent string) {
	for _, p := range paras {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		b.WriteString(strings.Repeat(indent, p.Level))
		b.WriteString(text)
		b.WriteString("\n")
	}
}

func writeSmartArt(b *strings.Builder, nodes []pptx.SmartArtNode, depth int, bullet string) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(bullet)
		b.WriteString(n.Text)
		b.WriteString("\n")
		writeSmartArt(b, n.Children, depth+1, bullet)
	}
}

func writeChartText(b *strings.Builder, c *pptx.ChartContent) {
	if c.Data == nil {
		b.WriteString("[chart]\n")
		return
	}
	title := c.Data.Title
	if title == "" {
		title = c.Data.Type + " chart"
	}
	fmt.Fprintf(b, "[%s]\n", title)
	if t := chartTable(c.Data); t != nil {
		b.WriteString(newGrid(t).String())
	}
}

// chartTable lays out chart series as a table: one row per category, one
// column per series.
func chartTable(d *chart.Data) *pptx.TableContent {
	if len(d.Series) == 0 {
		return nil
	}
	rows := 0
	for _, s := range d.Series {
		rows = max(rows, len(s.Categories), len(s.Values))
	}
	t := &pptx.TableContent{Columns: len(d.Series) + 1}
	header := []pptx.TableCell{cell("")}
	for _, s := range d.Series {
		header = append(header, cell(s.Name))
	}
	t.Rows = append(t.Rows, header)
	for i := 0; i < rows; i++ {
		row := []pptx.TableCell{cell(category(d.Series[0].Categories, i))}
		for _, s := range d.Series {
			v := ""
			if i < len(s.Values) && s.Values[i] != nil {
				v = strconv.FormatFloat(*s.Values[i], 'f', -1, 64)
			}
			row = append(row, cell(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cell(text string) pptx.TableCell {
	return pptx.TableCell{Text: text, RowSpan: 1, ColSpan: 1}
}

func category(cats []any, i int) string {
	if i >= len(cats) || cats[i] == nil {
		return ""
	}
	switch v := cats[i].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(cats[i])
}

// HTML renders the Markdown view through blackfriday. Deck text is escaped
// and raw HTML or unsafe link schemes are never emitted.
func HTML(doc *pptx.Document) []byte {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
	return blackfriday.Run([]byte(Markdown(doc)),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer))
}
