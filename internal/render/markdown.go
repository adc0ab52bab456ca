package render

import (
	"fmt"
	"strings"

	"github.com/tsawler/deckparse/pptx"
)

// Markdown renders the document with one section per slide. Title
// placeholders become headings, body text becomes nested lists, tables and
// charts become pipe tables and notes become block quotes.
func Markdown(doc *pptx.Document) string {
	var b strings.Builder
	for i, s := range doc.Slides {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		title := slideTitle(s)
		if title == "" {
			title = fmt.Sprintf("Slide %d", s.Number)
		}
		fmt.Fprintf(&b, "## %s\n\n", escape(title))
		for _, sh := range s.Shapes {
			if isTitle(sh) {
				continue
			}
			writeShapeMarkdown(&b, sh)
		}
		if s.Notes != "" {
			for _, line := range strings.Split(s.Notes, "\n") {
				fmt.Fprintf(&b, "> %s\n", escape(line))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func isTitle(sh pptx.Shape) bool {
	if sh.Placeholder == nil {
		return false
	}
	_, ok := sh.Content.(*pptx.TextContent)
	return ok && (sh.Placeholder.Type == "title" || sh.Placeholder.Type == "ctrTitle")
}

func slideTitle(s pptx.Slide) string {
	for _, sh := range s.Shapes {
		if isTitle(sh) {
			var parts []string
			for _, p := range sh.Content.(*pptx.TextContent).Paragraphs {
				if t := strings.TrimSpace(p.Text()); t != "" {
					parts = append(parts, t)
				}
			}
			return strings.Join(parts, " ")
		}
	}
	return ""
}

func writeShapeMarkdown(b *strings.Builder, sh pptx.Shape) {
	switch c := sh.Content.(type) {
	case *pptx.TextContent:
		writeParagraphsMarkdown(b, c.Paragraphs, sh.Placeholder != nil)
	case *pptx.WordArtContent:
		writeParagraphsMarkdown(b, c.Paragraphs, false)
	case *pptx.TableContent:
		writePipeTable(b, c)
	case *pptx.ChartContent:
		if c.Data == nil {
			return
		}
		if c.Data.Title != "" {
			fmt.Fprintf(b, "**%s**\n\n", escape(c.Data.Title))
		}
		if t := chartTable(c.Data); t != nil {
			writePipeTable(b, t)
		}
	case *pptx.SmartArtContent:
		writeSmartArt(b, c.Nodes, 0, "- ")
		b.WriteString("\n")
	case *pptx.PictureContent:
		if c.Description != "" {
			fmt.Fprintf(b, "*%s*\n\n", escape(c.Description))
		}
	}
}

// writeParagraphsMarkdown writes placeholder text as a nested list and free
// text as plain paragraphs.
func writeParagraphsMarkdown(b *strings.Builder, paras []pptx.Paragraph, list bool) {
	wrote := false
	for _, p := range paras {
		text := strings.TrimSpace(runsMarkdown(p.Runs))
		if text == "" {
			continue
		}
		if list {
			b.WriteString(strings.Repeat("  ", p.Level))
			b.WriteString("- ")
			b.WriteString(text)
			b.WriteString("\n")
		} else {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
		wrote = true
	}
	if wrote && list {
		b.WriteString("\n")
	}
}

func runsMarkdown(runs []pptx.TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		text := escape(r.Text)
		if strings.TrimSpace(text) == "" {
			b.WriteString(text)
			continue
		}
		switch {
		case r.Bold && r.Italic:
			text = "***" + text + "***"
		case r.Bold:
			text = "**" + text + "**"
		case r.Italic:
			text = "*" + text + "*"
		}
		if r.Hyperlink != "" {
			text = "[" + text + "](" + r.Hyperlink + ")"
		}
		b.WriteString(text)
	}
	return b.String()
}

func writePipeTable(b *strings.Builder, t *pptx.TableContent) {
	if len(t.Rows) == 0 {
		return
	}
	cols := t.Columns
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	for r, row := range t.Rows {
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) && !row[c].Merged {
				text = strings.ReplaceAll(escape(row[c].Text), "\n", " ")
			}
			fmt.Fprintf(b, " %s |", text)
		}
		b.WriteString("\n")
		if r == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", cols))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"|", `\|`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"&", `\&`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
