// Package pptx assembles presentation packages into an in-memory document
// model with resolved text formatting, tables, charts, SmartArt, WordArt,
// pictures, transitions and animation timelines.
package pptx

import (
	"encoding/json"
	"fmt"

	"github.com/tsawler/deckparse/animation"
	"github.com/tsawler/deckparse/chart"
	"github.com/tsawler/deckparse/media"
	"github.com/tsawler/deckparse/style"
)

// Document is the result of extracting a presentation.
type Document struct {
	SlideCount     int          `json:"slideCount"`
	Theme          *style.Theme `json:"theme,omitempty"`
	MediaFileNames []string     `json:"mediaFileNames"`
	Media          []media.Info `json:"media,omitempty"`
	Slides         []Slide      `json:"slides"`
}

// Slide is one extracted slide. Number is the 1-based position in the
// presentation, so skipped slides leave gaps.
type Slide struct {
	Number     int                  `json:"number"`
	Part       string               `json:"part"`
	LayoutName string               `json:"layoutName,omitempty"`
	Display    Display              `json:"display"`
	Transition *Transition          `json:"transition,omitempty"`
	Shapes     []Shape              `json:"shapes"`
	Animation  *animation.Container `json:"animation,omitempty"`
	Notes      string               `json:"notes,omitempty"`
}

// Display records which footer placeholders the slide carries.
type Display struct {
	ShowsFooter      bool `json:"showsFooter"`
	ShowsDate        bool `json:"showsDate"`
	ShowsSlideNumber bool `json:"showsSlideNumber"`
}

// Transition describes the slide transition. Durations are milliseconds.
type Transition struct {
	Type     string `json:"type,omitempty"`
	Speed    string `json:"speed,omitempty"`
	Duration *int64 `json:"duration,omitempty"`
	OnClick  bool   `json:"advanceOnClick"`
	After    *int64 `json:"advanceAfter,omitempty"`
}

// Transform is a shape's position and size in EMU.
type Transform struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Placeholder identifies the template slot a shape fills.
type Placeholder struct {
	Type  string                `json:"type,omitempty"`
	Index string                `json:"index,omitempty"`
	Kind  style.PlaceholderKind `json:"kind"`
}

// Shape is one element of a slide's shape tree. Content is nil for shapes
// with nothing to extract.
type Shape struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Transform   Transform    `json:"transform"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
	Content     Content      `json:"content,omitempty"`
}

// Content is one of *TextContent, *TableContent, *ChartContent,
// *SmartArtContent, *WordArtContent, *PictureContent or *UnknownContent.
type Content interface {
	Kind() string
}

// TextContent is the text of an autoshape or text box.
type TextContent struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// TableContent is a table grid. Rows keep the grid positions of merged
// cells so every row has Columns entries when the markup is well formed.
type TableContent struct {
	Columns int           `json:"columns"`
	Rows    [][]TableCell `json:"rows"`
}

// TableCell is one grid position.
type TableCell struct {
	Text    string `json:"text"`
	RowSpan int    `json:"rowSpan"`
	ColSpan int    `json:"colSpan"`
	// Merged marks positions covered by a neighbouring spanning cell.
	Merged bool `json:"merged,omitempty"`
}

// ChartContent references a chart part. Data is nil when the chart has no
// readable embedded workbook.
type ChartContent struct {
	Part string      `json:"part"`
	Data *chart.Data `json:"data,omitempty"`
}

// SmartArtContent is the text hierarchy of a diagram.
type SmartArtContent struct {
	Nodes []SmartArtNode `json:"nodes"`
}

// SmartArtNode is one diagram point with its child points.
type SmartArtNode struct {
	Text     string         `json:"text"`
	Children []SmartArtNode `json:"children,omitempty"`
}

// WordArtContent is warped text.
type WordArtContent struct {
	Preset     string      `json:"preset"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// PictureContent references an image. MediaPart is empty for linked images.
type PictureContent struct {
	MediaPart   string `json:"mediaPart,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnknownContent marks a graphic frame whose payload is not extracted.
type UnknownContent struct {
	URI string `json:"uri"`
}

func (*TextContent) Kind() string     { return "text" }
func (*TableContent) Kind() string    { return "table" }
func (*ChartContent) Kind() string    { return "chart" }
func (*SmartArtContent) Kind() string { return "smartArt" }
func (*WordArtContent) Kind() string  { return "wordArt" }
func (*PictureContent) Kind() string  { return "picture" }
func (*UnknownContent) Kind() string  { return "unknown" }

// MarshalJSON writes the content with its kind discriminator.
func (s Shape) MarshalJSON() ([]byte, error) {
	type plain Shape
	out := struct {
		plain
		Content json.RawMessage `json:"content,omitempty"`
	}{plain: plain(s)}
	if s.Content != nil {
		raw, err := json.Marshal(s.Content)
		if err != nil {
			return nil, err
		}
		kind, _ := json.Marshal(s.Content.Kind())
		if string(raw) == "{}" {
			out.Content = json.RawMessage(`{"kind":` + string(kind) + `}`)
		} else {
			out.Content = json.RawMessage(`{"kind":` + string(kind) + `,` + string(raw[1:]))
		}
	}
	return json.Marshal(out)
}

// Paragraph is a list of runs at one outline level.
type Paragraph struct {
	Level int       `json:"level"`
	Runs  []TextRun `json:"runs"`
}

// Text concatenates the paragraph's runs.
func (p Paragraph) Text() string {
	n := 0
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range p.Runs {
		b = append(b, r.Text...)
	}
	return string(b)
}

// TextRun is a run of text with its effective formatting. Font, Size and
// Color are unset when nothing in the style chain supplied them.
type TextRun struct {
	Text      string                  `json:"text"`
	Bold      bool                    `json:"bold"`
	Italic    bool                    `json:"italic"`
	Font      style.Optional[string]  `json:"font"`
	Size      style.Optional[float64] `json:"size"`
	Color     style.Optional[string]  `json:"color"`
	Hyperlink string                  `json:"hyperlink,omitempty"`
}

// Skip reports a slide that was left out of the document.
type Skip struct {
	Number int    `json:"number"`
	Part   string `json:"part"`
	Reason string `json:"reason"`
}

func (s Skip) String() string {
	return fmt.Sprintf("slide %d (%s): %s", s.Number, s.Part, s.Reason)
}
