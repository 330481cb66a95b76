// Package content defines the rich-content segment tree used for question
// bodies, answer templates and table cells, plus the normalization and
// serialization layer that keeps stored JSON canonical across legacy
// formats and partial client edits.
package content

import "github.com/google/uuid"

type Kind string

const (
	KindText     Kind = "text"
	KindMath     Kind = "math"
	KindTable    Kind = "table"
	KindGraph    Kind = "graph"
	KindImage    Kind = "image"
	KindImageRef Kind = "image_ref" // produced by the import pipeline only
)

// Render defaults and caps applied during normalization.
const (
	defaultAxisBound   = 5.0
	defaultGridStep    = 1.0
	defaultPointSize   = 4.0
	defaultLabelSize   = 12.0
	defaultAreaOpacity = 0.3
	defaultGraphWidth  = 400.0
	defaultGraphHeight = 300.0
	maxGraphWidth      = 800.0
)

// Inline is the narrower segment type allowed inside a table cell.
// Cells hold only text and math; nesting tables or graphs inside a cell
// is ruled out by construction.
type Inline struct {
	Type  Kind   `json:"type"`
	ID    string `json:"id"`
	Text  string `json:"text,omitempty"`
	Latex string `json:"latex,omitempty"`
}

// Cell is one table cell: an ordered list of inline segments.
type Cell []Inline

// Segment is one node of a content tree. The Type tag decides which
// field groups are meaningful; normalization guarantees every segment
// read from storage is fully populated for its kind.
type Segment struct {
	Type Kind   `json:"type"`
	ID   string `json:"id"`

	// text
	Text string `json:"text,omitempty"`

	// math: raw LaTeX body, no $ delimiters. Delimiters are added only
	// at the string-projection boundary.
	Latex string `json:"latex,omitempty"`

	// table
	Rows       [][]Cell  `json:"rows,omitempty"`
	ColWidths  []float64 `json:"colWidths,omitempty"`
	RowHeights []float64 `json:"rowHeights,omitempty"`

	// graph
	Axes       *Axes       `json:"axes,omitempty"`
	Points     []Point     `json:"points,omitempty"`
	Lines      []Line      `json:"lines,omitempty"`
	Curves     []Curve     `json:"curves,omitempty"`
	Functions  []Function  `json:"functions,omitempty"`
	Areas      []Area      `json:"areas,omitempty"`
	Texts      []TextLabel `json:"texts,omitempty"`
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Background string      `json:"background,omitempty"`

	// image
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`

	// image_ref (resolved to an image by the importer before persistence)
	PageNumber  int          `json:"pageNumber,omitempty"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

type Axes struct {
	XMin     float64 `json:"xMin"`
	XMax     float64 `json:"xMax"`
	YMin     float64 `json:"yMin"`
	YMax     float64 `json:"yMax"`
	XLabel string `json:"xLabel,omitempty"`
	YLabel string `json:"yLabel,omitempty"`
	// GridStep and ShowGrid are always emitted: an explicit zero step is
	// an authored value and must survive a save/load cycle, not be
	// re-defaulted on reparse.
	GridStep float64 `json:"gridStep"`
	ShowGrid bool    `json:"showGrid"`
}

// Anchor is a shape endpoint: either a literal coordinate or a reference
// to a sibling point's id. References are never validated for existence
// here; a dangling pointId is the renderer's problem.
type Anchor struct {
	Type    string  `json:"type"` // "coord" | "point"
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	PointID string  `json:"pointId,omitempty"`
}

type Point struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size"` // size 0 hides the marker; always emitted
}

type Line struct {
	ID    string `json:"id"`
	From  Anchor `json:"from"`
	To    Anchor `json:"to"`
	Color string `json:"color,omitempty"`
	Style string `json:"style,omitempty"` // solid|dashed|dotted
}

type Curve struct {
	ID     string   `json:"id"`
	From   Anchor   `json:"from"`
	To     Anchor   `json:"to"`
	Offset *float64 `json:"offset,omitempty"` // bend; unset unless explicitly numeric
	Color  string   `json:"color,omitempty"`
}

type Function struct {
	ID         string   `json:"id"`
	Expression string   `json:"expression"`
	Color      string   `json:"color,omitempty"`
	DomainMin  *float64 `json:"domainMin,omitempty"`
	DomainMax  *float64 `json:"domainMax,omitempty"`
	Offset     *float64 `json:"offset,omitempty"`
}

// Area shades a region bounded by one or two functions, referenced by id.
type Area struct {
	ID          string  `json:"id"`
	FunctionID  string  `json:"functionId,omitempty"`
	FunctionID2 string  `json:"functionId2,omitempty"`
	Color       string  `json:"color,omitempty"`
	Opacity     float64 `json:"opacity"` // 0 means fully transparent, not unset
}

type TextLabel struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size"` // always emitted, same rule as Point.Size
}

// BoundingBox locates an image_ref on its source page, in percentages.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewText builds a text segment with a fresh id.
func NewText(text string) Segment {
	return Segment{Type: KindText, ID: newID(), Text: text}
}

// NewMath builds a math segment with a fresh id. latex carries no $ delimiters.
func NewMath(latex string) Segment {
	return Segment{Type: KindMath, ID: newID(), Latex: latex}
}

func newID() string { return uuid.NewString() }

// sentinel is the canonical empty document: a single empty text segment.
func sentinel() []Segment {
	return []Segment{NewText("")}
}

func emptyInline() Inline {
	return Inline{Type: KindText, ID: newID()}
}

func emptyCell() Cell {
	return Cell{emptyInline()}
}
