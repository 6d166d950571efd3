package render

import (
	"bytes"
	"fmt"
	"html"
	"image/color"
	"io"
	"strings"

	"github.com/lox/forecastview/internal/chart"
)

// SVG writes the geometry as a standalone SVG document. Paint order is
// gridlines, labels, band, line, markers.
func SVG(w io.Writer, g *chart.Geometry, st Style) error {
	c := g.Canvas
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		c.Width, c.Height, c.Width, c.Height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hex(st.Background))

	fmt.Fprintf(&b, `<g stroke="%s" stroke-width="1">`+"\n", hex(st.Grid))
	for _, s := range g.GridLines {
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", s.From.X, s.From.Y, s.To.X, s.To.Y)
	}
	b.WriteString("</g>\n")

	fmt.Fprintf(&b, `<g fill="%s" font-family="sans-serif" font-size="10">`+"\n", hex(st.Text))
	for _, l := range g.AxisLabels {
		if l.Angle != 0 {
			fmt.Fprintf(&b, `<text x="%d" y="%d" transform="rotate(%g %d %d)">%s</text>`+"\n",
				l.At.X, l.At.Y, l.Angle, l.At.X, l.At.Y, html.EscapeString(l.Text))
			continue
		}
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s</text>`+"\n", l.At.X, l.At.Y, html.EscapeString(l.Text))
	}
	b.WriteString("</g>\n")

	if len(g.Band) > 0 {
		pts := make([]string, len(g.Band))
		for i, p := range g.Band {
			pts[i] = fmt.Sprintf("%d,%d", p.X, p.Y)
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" fill-opacity="%.2f" stroke="none"/>`+"\n",
			strings.Join(pts, " "), hex(st.Band), opacity(st.Band))
	}

	fmt.Fprintf(&b, `<g stroke="%s" stroke-width="%g" stroke-linecap="round">`+"\n", hex(st.Line), st.LineWidth)
	for _, s := range g.Line {
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", s.From.X, s.From.Y, s.To.X, s.To.Y)
	}
	b.WriteString("</g>\n")

	if len(g.Points) > 0 {
		fmt.Fprintf(&b, `<g fill="%s">`+"\n", hex(st.Line))
		for _, p := range g.Points {
			fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%g"/>`+"\n", p.X, p.Y, st.MarkerSize)
		}
		b.WriteString("</g>\n")
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func SVGBytes(g *chart.Geometry, st Style) ([]byte, error) {
	var buf bytes.Buffer
	if err := SVG(&buf, g, st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}
