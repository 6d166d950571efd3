package chart

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func values(vs ...float64) Series {
	s := Series{}
	for i, v := range vs {
		s.Samples = append(s.Samples, Sample{Label: slotText(i), Value: v})
	}
	return s
}

func slotText(i int) string {
	return []string{"00:00:00", "03:00:00", "06:00:00", "09:00:00", "12:00:00", "15:00:00", "18:00:00", "21:00:00"}[i%8]
}

func TestProject_Scale(t *testing.T) {
	g, err := Project(values(10, 12, 11), DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	if g.Lower != 10 || g.Upper != 12 {
		t.Errorf("bounds = %v..%v, want 10..12", g.Lower, g.Upper)
	}
	if g.PixelsPerUnit != 60 {
		t.Errorf("PixelsPerUnit = %v, want 60", g.PixelsPerUnit)
	}
	if g.PixelsPerSample != 150 {
		t.Errorf("PixelsPerSample = %v, want 150", g.PixelsPerSample)
	}

	want := []Segment{
		{Point{20, 120}, Point{170, 0}},
		{Point{170, 0}, Point{320, 60}},
	}
	if !reflect.DeepEqual(g.Line, want) {
		t.Errorf("Line = %v, want %v", g.Line, want)
	}
	if g.Points != nil {
		t.Errorf("Points = %v, want nil without markers", g.Points)
	}
	if g.Band != nil {
		t.Errorf("Band = %v, want nil without band", g.Band)
	}
}

func TestProject_GridAndLabels(t *testing.T) {
	g, err := Project(values(10, 12, 11), DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	// two value gridlines (upper bound suppressed) plus ticks at slots 0 and 1
	wantGrid := []Segment{
		{Point{15, 120}, Point{320, 120}},
		{Point{15, 60}, Point{320, 60}},
		{Point{20, 125}, Point{20, 120}},
		{Point{170, 125}, Point{170, 120}},
	}
	if !reflect.DeepEqual(g.GridLines, wantGrid) {
		t.Errorf("GridLines = %v, want %v", g.GridLines, wantGrid)
	}

	var texts []string
	for _, l := range g.AxisLabels {
		texts = append(texts, l.Text)
	}
	wantTexts := []string{"10", "11", "12", "00:00", "03:00", "06:00"}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("label texts = %v, want %v", texts, wantTexts)
	}

	upper := g.AxisLabels[2]
	if upper.At != (Point{5, 3}) {
		t.Errorf("upper bound label at %v, want {5 3}", upper.At)
	}
	slot := g.AxisLabels[4]
	if slot.At != (Point{160, 135}) {
		t.Errorf("slot label at %v, want {160 135}", slot.At)
	}
}

func TestProject_ConstantSeriesIsFlat(t *testing.T) {
	g, err := Project(values(5, 5, 5, 5), DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if g.Lower != 4 || g.Upper != 6 {
		t.Errorf("bounds = %v..%v, want 4..6", g.Lower, g.Upper)
	}
	if len(g.Line) != 3 {
		t.Fatalf("len(Line) = %d, want 3", len(g.Line))
	}
	for i, seg := range g.Line {
		if seg.From.Y != 60 || seg.To.Y != 60 {
			t.Errorf("segment %d = %v, want flat at y=60", i, seg)
		}
	}
}

func TestProject_SingleSample(t *testing.T) {
	g, err := Project(values(3.5), DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if g.PixelsPerSample != 300 {
		t.Errorf("PixelsPerSample = %v, want 300", g.PixelsPerSample)
	}
	if len(g.Line) != 0 {
		t.Errorf("len(Line) = %d, want 0", len(g.Line))
	}

	ticks := 0
	for _, seg := range g.GridLines {
		if seg.From.X == seg.To.X {
			ticks++
		}
	}
	if ticks != 1 {
		t.Errorf("time ticks = %d, want 1 for the first slot", ticks)
	}
}

func TestProject_Errors(t *testing.T) {
	tests := []struct {
		name   string
		series Series
		canvas Canvas
		want   error
	}{
		{"empty", Series{}, DefaultCanvas, ErrEmptySeries},
		{"NaN", values(math.NaN()), DefaultCanvas, ErrInvalidSample},
		{"infinite", values(1, math.Inf(1)), DefaultCanvas, ErrInvalidSample},
		{
			"NaN in band",
			Series{Band: true, Samples: []Sample{{Value: 1, Low: math.NaN(), High: 2}}},
			DefaultCanvas,
			ErrInvalidSample,
		},
		{"no horizontal span", values(1, 2), Canvas{Width: 10, LeftMargin: 20}, ErrInvalidCanvas},
		{"range overflows", values(-1e308, 1e308), DefaultCanvas, ErrInvalidSample},
		{"constant beyond float precision", values(1e17, 1e17, 1e17), DefaultCanvas, ErrInvalidSample},
		{
			"band range overflows",
			Series{Band: true, Samples: []Sample{{Value: 0, Low: -math.MaxFloat64, High: math.MaxFloat64}}},
			DefaultCanvas,
			ErrInvalidSample,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Project(tt.series, tt.canvas)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if g != nil {
				t.Errorf("geometry = %v, want nil on failure", g)
			}
		})
	}
}

func TestProject_BandIgnoredWithoutFlag(t *testing.T) {
	s := Series{Samples: []Sample{{Value: 1, Low: math.NaN()}, {Value: 2, High: math.Inf(1)}}}
	if _, err := Project(s, DefaultCanvas); err != nil {
		t.Errorf("Project: %v, want low/high ignored without band", err)
	}
}

func TestProject_BandPolygon(t *testing.T) {
	s := Series{
		Band: true,
		Samples: []Sample{
			{Value: 1, Low: 0, High: 2},
			{Value: 2, Low: 1, High: 3},
			{Value: 3, Low: 2, High: 4},
		},
	}
	g, err := Project(s, DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	// bounds 0..4 => 30px per unit
	want := []Point{
		{20, 60}, {170, 30}, {320, 0},
		{320, 60}, {170, 90}, {20, 120},
	}
	if !reflect.DeepEqual(g.Band, want) {
		t.Errorf("Band = %v, want %v", g.Band, want)
	}
}

func TestProject_CrossingBandAccepted(t *testing.T) {
	// low and high swap places at the middle sample; the polygon self-intersects
	s := Series{
		Band: true,
		Samples: []Sample{
			{Value: 1, Low: 0, High: 2},
			{Value: 1, Low: 3, High: 1},
			{Value: 1, Low: 0, High: 2},
		},
	}
	g, err := Project(s, DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(g.Band) != 6 {
		t.Fatalf("len(Band) = %d, want 6", len(g.Band))
	}
	if g.Band[1].Y < g.Band[4].Y {
		t.Errorf("expected crossing: high edge y=%d above low edge y=%d", g.Band[1].Y, g.Band[4].Y)
	}
}

func TestProject_AutoStep(t *testing.T) {
	tests := []struct {
		name     string
		series   Series
		wantStep float64
		wantGrid int
	}{
		{"narrow range", values(10, 12), 1, 2},
		{"pressure range", values(1003, 1017), 2, 7},
		{"wide range", values(0, 100), 10, 10},
		{"explicit step", Series{Step: 5, Samples: values(0, 20).Samples}, 5, 4},
		{"explicit step too fine", Series{Step: 1e-7, Samples: values(0, 10).Samples}, 1, 10},
		{"infinite step", Series{Step: math.Inf(1), Samples: values(0, 10).Samples}, 1, 10},
		{"negative step", Series{Step: -2, Samples: values(0, 10).Samples}, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Project(tt.series, DefaultCanvas)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if g.Step != tt.wantStep {
				t.Errorf("Step = %v, want %v", g.Step, tt.wantStep)
			}
			horizontal := 0
			for _, seg := range g.GridLines {
				if seg.From.Y == seg.To.Y {
					horizontal++
				}
			}
			if horizontal != tt.wantGrid {
				t.Errorf("value gridlines = %d, want %d", horizontal, tt.wantGrid)
			}
		})
	}
}

func TestProject_LabelsFinite(t *testing.T) {
	tests := []struct {
		name   string
		series Series
	}{
		{"infinite step", Series{Step: math.Inf(1), Samples: values(0, 10).Samples}},
		{"huge finite range", values(-8e307, 8e307)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Project(tt.series, DefaultCanvas)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if len(g.AxisLabels) > maxGridLines+1+len(tt.series.Samples) {
				t.Errorf("len(AxisLabels) = %d, want at most %d", len(g.AxisLabels), maxGridLines+1+len(tt.series.Samples))
			}
			for _, l := range g.AxisLabels {
				if strings.Contains(l.Text, "NaN") || strings.Contains(l.Text, "Inf") {
					t.Errorf("label %q is not finite", l.Text)
				}
			}
			for _, seg := range g.Line {
				for _, p := range []Point{seg.From, seg.To} {
					if p.Y < 0 || p.Y > g.Canvas.DrawableHeight {
						t.Errorf("line point %v outside drawable height %d", p, g.Canvas.DrawableHeight)
					}
				}
			}
		})
	}
}

func TestProject_FloorAtZero(t *testing.T) {
	tests := []struct {
		name      string
		series    Series
		wantLower float64
		wantUpper float64
	}{
		{"pins lower bound", Series{FloorAtZero: true, Samples: values(12.5, 20.1).Samples}, 0, 21},
		{"calm", Series{FloorAtZero: true, Samples: values(0, 0).Samples}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Project(tt.series, DefaultCanvas)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if g.Lower != tt.wantLower || g.Upper != tt.wantUpper {
				t.Errorf("bounds = %v..%v, want %v..%v", g.Lower, g.Upper, tt.wantLower, tt.wantUpper)
			}
		})
	}
}

func TestProject_Idempotent(t *testing.T) {
	s := values(1, 4, 2, 8, 5)
	a, err := Project(s, DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	b, err := Project(s, DefaultCanvas)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated projections differ")
	}
}

func TestCanvasDefaults(t *testing.T) {
	c := Canvas{Width: 320}.withDefaults()
	if c.DrawableHeight != DefaultDrawableHeight || c.LeftMargin != DefaultLeftMargin {
		t.Errorf("defaults = %+v", c)
	}
	if c.Span() != 300 {
		t.Errorf("Span() = %d, want 300", c.Span())
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{2.5, 3},
		{2.49, 2},
		{-2.5, -2},
		{-2.51, -3},
	}
	for _, tt := range tests {
		if got := round(tt.in); got != tt.want {
			t.Errorf("round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
