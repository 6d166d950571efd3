package chart

import "math"

const (
	DefaultDrawableHeight = 120
	DefaultLeftMargin     = 20
)

// DefaultCanvas leaves a 300px horizontal span and room under the drawable
// area for the time axis.
var DefaultCanvas = Canvas{
	Width:          320,
	Height:         140,
	DrawableHeight: DefaultDrawableHeight,
	LeftMargin:     DefaultLeftMargin,
}

// Canvas is the pixel space a chart is projected onto. Values grow upwards
// from the bottom of the drawable area; the time axis sits below it.
type Canvas struct {
	Width          int
	Height         int
	DrawableHeight int
	LeftMargin     int
}

// Span is the horizontal extent samples are spread across.
func (c Canvas) Span() int {
	return c.Width - c.LeftMargin
}

func (c Canvas) withDefaults() Canvas {
	if c.DrawableHeight == 0 {
		c.DrawableHeight = DefaultDrawableHeight
	}
	if c.LeftMargin == 0 {
		c.LeftMargin = DefaultLeftMargin
	}
	if c.Height == 0 {
		c.Height = c.DrawableHeight + 20
	}
	return c
}

type Point struct {
	X, Y int
}

type Segment struct {
	From, To Point
}

// Label is a text placement; At is the text's lower-left corner.
type Label struct {
	At    Point
	Angle float64
	Text  string
}

// Geometry is the pixel-space output of Project. It is a plain value owned by
// the caller.
type Geometry struct {
	Canvas          Canvas
	Lower           float64
	Upper           float64
	Step            float64
	PixelsPerUnit   float64
	PixelsPerSample float64

	GridLines  []Segment
	AxisLabels []Label
	Line       []Segment
	Points     []Point // nil unless the series asks for markers
	Band       []Point // nil unless the series carries low/high bounds
}

// round matches screen rounding: halves go up, including for negative values.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
