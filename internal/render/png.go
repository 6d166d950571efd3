package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lox/forecastview/internal/chart"
)

const labelFontSize = 10

var (
	labelFace font.Face
	fontOnce  sync.Once
	fontErr   error
)

func loadFont() {
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse goregular: %w", err)
			return
		}
		labelFace, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    labelFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create label face: %w", err)
		}
	})
}

// PNG rasterizes the geometry in the same paint order as SVG.
func PNG(g *chart.Geometry, st Style) ([]byte, error) {
	loadFont()
	if fontErr != nil {
		return nil, fmt.Errorf("load font: %w", fontErr)
	}

	c := g.Canvas
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", chart.ErrInvalidCanvas, c.Width, c.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	for _, s := range g.GridLines {
		drawSegment(img, s, 1, st.Grid)
	}
	for _, l := range g.AxisLabels {
		drawText(img, l.Text, l.At.X, l.At.Y, st.Text)
	}
	if len(g.Band) > 2 {
		fillPolygon(img, g.Band, st.Band)
	}
	for _, s := range g.Line {
		drawSegment(img, s, st.LineWidth, st.Line)
	}
	for _, p := range g.Points {
		fillCircle(img, p, st.MarkerSize, st.Line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func newRasterizer(img *image.RGBA) *vector.Rasterizer {
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

func fillPolygon(img *image.RGBA, pts []chart.Point, col color.Color) {
	z := newRasterizer(img)
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

// drawSegment fills the rectangle of the given width around the segment.
func drawSegment(img *image.RGBA, s chart.Segment, width float64, col color.Color) {
	x0, y0 := float64(s.From.X)+0.5, float64(s.From.Y)+0.5
	x1, y1 := float64(s.To.X)+0.5, float64(s.To.Y)+0.5
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	z := newRasterizer(img)
	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func fillCircle(img *image.RGBA, p chart.Point, r float64, col color.Color) {
	const sides = 16
	cx, cy := float64(p.X)+0.5, float64(p.Y)+0.5

	z := newRasterizer(img)
	z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / sides
		z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
