package widget

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/fakhrymubarak/weather-stripes/internal/colorscale"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderPNG rasterises w at one pixel per layout unit.
func RenderPNG(out io.Writer, w *Widget) error {
	return png.Encode(out, Rasterize(w))
}

// Rasterize draws w into a new RGBA image.
func Rasterize(w *Widget) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w.Width, w.Height))
	fill(img, img.Bounds(), w.Background)

	if len(w.Error) > 0 {
		for i, line := range w.Error {
			drawText(img, line, 10, errorTextTop+i*errorLineHeight, ErrorColor)
		}
		return img
	}

	bar := w.TitleBar
	for row := 0; row < bar.H; row++ {
		factor := 0.0
		if bar.H > 1 {
			factor = float64(row) / float64(bar.H-1)
		}
		fill(img, image.Rect(bar.X, bar.Y+row, bar.X+bar.W, bar.Y+row+1), colorscale.Lerp(TitleFrom, TitleTo, factor))
	}
	drawText(img, w.Title, bar.X+titleTextDX, bar.Y+titleTextDY, TitleColor)

	for _, s := range w.Stripes {
		fill(img, image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H), s.Color)
	}
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c colorscale.RGB) {
	draw.Draw(img, r, image.NewUniform(toColor(c)), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, s string, x, y int, c colorscale.RGB) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(toColor(c)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func toColor(c colorscale.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
