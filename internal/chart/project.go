// Package chart projects a bounded numeric series onto a fixed-size canvas,
// producing gridlines, axis labels, a polyline and an optional min/max band.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrEmptySeries   = errors.New("empty series")
	ErrInvalidSample = errors.New("invalid sample")
	ErrInvalidCanvas = errors.New("invalid canvas")
)

const (
	maxGridLines = 12
	timeLabelLen = 5 // HH:MM
	tickLength   = 5
)

// Sample is one point of a series. Low and High are only read when the series
// has a band.
type Sample struct {
	Label string
	Value float64
	Low   float64
	High  float64
}

type Series struct {
	Samples []Sample
	Unit    string
	Band    bool
	Markers bool
	// Step is the value distance between gridlines. Zero, or a step that
	// would draw more than maxGridLines lines, picks one automatically.
	Step float64
	// FloorAtZero pins the lower bound to zero instead of the series minimum.
	FloorAtZero bool
}

// Project maps s onto canvas c. It fails with ErrEmptySeries when there are
// no samples and ErrInvalidSample when any value used is NaN or infinite, or
// when the value range is too wide or too fine for float64 to scale.
func Project(s Series, c Canvas) (*Geometry, error) {
	c = c.withDefaults()
	if c.Span() <= 0 || c.DrawableHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d with left margin %d", ErrInvalidCanvas, c.Width, c.Height, c.LeftMargin)
	}
	if len(s.Samples) == 0 {
		return nil, ErrEmptySeries
	}
	if err := checkSamples(s); err != nil {
		return nil, err
	}

	lower, upper := bounds(s)
	span := upper - lower
	if !(span > 0) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("%w: range %v..%v cannot be scaled", ErrInvalidSample, lower, upper)
	}
	n := len(s.Samples)
	g := &Geometry{
		Canvas:          c,
		Lower:           lower,
		Upper:           upper,
		Step:            gridStep(s.Step, span),
		PixelsPerUnit:   float64(c.DrawableHeight) / span,
		PixelsPerSample: float64(c.Span()) / float64(max(1, n-1)),
	}

	y := func(v float64) int {
		return round(float64(c.DrawableHeight) - (v-lower)*g.PixelsPerUnit)
	}
	x := func(i int) int {
		return round(float64(c.LeftMargin) + float64(i)*g.PixelsPerSample)
	}

	gridX := max(0, c.LeftMargin-tickLength)
	labelX := max(0, c.LeftMargin-15)
	for k := 0; k <= maxGridLines; k++ {
		v := lower + float64(k)*g.Step
		if v > upper {
			break
		}
		py := y(v)
		if v != upper {
			g.GridLines = append(g.GridLines, Segment{Point{gridX, py}, Point{c.Width, py}})
		}
		g.AxisLabels = append(g.AxisLabels, Label{At: Point{labelX, py + 3}, Text: formatValue(v) + s.Unit})
	}

	base := c.DrawableHeight
	for i, sample := range s.Samples {
		px := x(i)
		if i == 0 || i != n-1 {
			g.GridLines = append(g.GridLines, Segment{Point{px, base + tickLength}, Point{px, base}})
		}
		g.AxisLabels = append(g.AxisLabels, Label{At: Point{px - 10, base + 15}, Text: truncate(sample.Label, timeLabelLen)})
	}

	points := make([]Point, n)
	for i, sample := range s.Samples {
		points[i] = Point{x(i), y(sample.Value)}
	}
	g.Line = make([]Segment, 0, n-1)
	for i := 1; i < n; i++ {
		g.Line = append(g.Line, Segment{points[i-1], points[i]})
	}
	if s.Markers {
		g.Points = points
	}

	if s.Band {
		g.Band = make([]Point, 0, 2*n)
		for i := 0; i < n; i++ {
			g.Band = append(g.Band, Point{x(i), y(s.Samples[i].High)})
		}
		for i := n - 1; i >= 0; i-- {
			g.Band = append(g.Band, Point{x(i), y(s.Samples[i].Low)})
		}
	}

	return g, nil
}

func checkSamples(s Series) error {
	for i, sample := range s.Samples {
		values := []float64{sample.Value}
		if s.Band {
			values = append(values, sample.Low, sample.High)
		}
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: sample %d is %v", ErrInvalidSample, i, v)
			}
		}
	}
	return nil
}

// bounds returns integral lower/upper bounds, widened when they coincide.
// Beyond 2^53 the widening is lost to rounding and Project rejects the range.
func bounds(s Series) (lower, upper float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sample := range s.Samples {
		lo = math.Min(lo, sample.Value)
		hi = math.Max(hi, sample.Value)
		if s.Band {
			lo = math.Min(lo, math.Min(sample.Low, sample.High))
			hi = math.Max(hi, math.Max(sample.Low, sample.High))
		}
	}

	lower, upper = math.Floor(lo), math.Ceil(hi)
	if s.FloorAtZero {
		lower = 0
	}
	if upper <= lower {
		if s.FloorAtZero {
			upper = lower + 1
		} else {
			lower, upper = upper-1, upper+1
		}
	}
	return lower, upper
}

// gridStep keeps a requested step when it yields at most maxGridLines lines
// over span, otherwise picks the smallest 1/2/5 step that does. span must be
// finite and positive.
func gridStep(step, span float64) float64 {
	if step > 0 && !math.IsInf(step, 0) && span/step <= maxGridLines {
		return step
	}
	for magnitude := 1.0; !math.IsInf(magnitude, 0); magnitude *= 10 {
		for _, m := range []float64{1, 2, 5} {
			if span/(m*magnitude) <= maxGridLines {
				return m * magnitude
			}
		}
	}
	return span
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
