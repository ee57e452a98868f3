package raster

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/hazop-ai/pidsym/errors"
)

// BuiltinName is the name of the in-process converter.
const BuiltinName = "oksvg"

// OksvgConverter rasterizes with github.com/srwiley/oksvg. It renders at
// Supersample times the target size and scales down, which smooths the thin
// strokes typical of P&ID symbols.
type OksvgConverter struct {
	// Background fills the canvas first; nil keeps it transparent.
	Background color.Color
	// Supersample defaults to 2; 1 disables it.
	Supersample int
}

// Name implements Converter.
func (OksvgConverter) Name() string { return BuiltinName }

// Available implements Converter. The built-in renderer is always present.
func (OksvgConverter) Available() bool { return true }

// Convert implements Converter.
func (c OksvgConverter) Convert(ctx context.Context, in, out string, size int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size <= 0 {
		return errors.Newf("invalid png size %d", size)
	}

	f, err := os.Open(in)
	if err != nil {
		return errors.Wrapf(err, "open %s", in)
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f, oksvg.WarnErrorMode)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "parse %s", in), errors.ErrConversion)
	}

	img := c.render(icon, size)

	if err := ctx.Err(); err != nil {
		return err
	}
	return writePNG(out, img)
}

func (c OksvgConverter) render(icon *oksvg.SvgIcon, size int) image.Image {
	factor := c.Supersample
	if factor <= 0 {
		factor = 2
	}
	canvas := size * factor

	big := image.NewRGBA(image.Rect(0, 0, canvas, canvas))
	if c.Background != nil {
		draw.Draw(big, big.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)
	}

	x, y, w, h := fitSquare(icon.ViewBox.W, icon.ViewBox.H, float64(canvas))
	icon.SetTarget(x, y, w, h)
	scanner := rasterx.NewScannerGV(canvas, canvas, big, big.Bounds())
	icon.Draw(rasterx.NewDasher(canvas, canvas, scanner), 1)

	if factor == 1 {
		return big
	}
	small := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(small, small.Bounds(), big, big.Bounds(), draw.Over, nil)
	return small
}

// fitSquare centers a w x h view box inside a side x side square, keeping
// its aspect ratio.
func fitSquare(w, h, side float64) (x, y, tw, th float64) {
	if w <= 0 || h <= 0 {
		return 0, 0, side, side
	}
	scale := side / w
	if h*scale > side {
		scale = side / h
	}
	tw, th = w*scale, h*scale
	return (side - tw) / 2, (side - th) / 2, tw, th
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}
