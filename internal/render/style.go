// Package render draws projected chart geometry as SVG or PNG.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lox/forecastview/internal/chart"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var ErrUnknownFormat = errors.New("unknown image format")

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSVG, FormatPNG:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Style holds the colours used for one chart.
type Style struct {
	Background color.NRGBA
	Grid       color.NRGBA
	Text       color.NRGBA
	Line       color.NRGBA
	Band       color.NRGBA
	LineWidth  float64
	MarkerSize float64
}

var baseStyle = Style{
	Background: color.NRGBA{255, 255, 255, 255},
	Grid:       color.NRGBA{204, 204, 204, 255},
	Text:       color.NRGBA{85, 85, 85, 255},
	Line:       color.NRGBA{51, 51, 51, 255},
	Band:       color.NRGBA{51, 51, 51, 64},
	LineWidth:  1.5,
	MarkerSize: 2,
}

// StyleFor returns the palette for a metric.
func StyleFor(m chart.Metric) Style {
	st := baseStyle
	switch m {
	case chart.MetricTemperature:
		st.Line = color.NRGBA{214, 69, 65, 255}
		st.Band = color.NRGBA{214, 69, 65, 56}
	case chart.MetricWind:
		st.Line = color.NRGBA{46, 134, 171, 255}
		st.Band = color.NRGBA{46, 134, 171, 56}
	case chart.MetricPrecipitation:
		st.Line = color.NRGBA{52, 101, 164, 255}
	case chart.MetricPressure:
		st.Line = color.NRGBA{117, 80, 123, 255}
	}
	return st
}

// Render encodes the geometry in the requested format.
func Render(f Format, g *chart.Geometry, st Style) ([]byte, error) {
	switch f {
	case FormatSVG:
		return SVGBytes(g, st)
	case FormatPNG:
		return PNG(g, st)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
