package main

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

var (
	placeholderFill   = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	placeholderStroke = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	defaultShapeFill  = color.RGBA{0x4a, 0x90, 0xd9, 0xff}
)

// RenderSlidePNG draws one slide at scale times the 800x600 canvas size.
func RenderSlidePNG(w io.Writer, slide Slide, scale float64, fm *FontMeasurer) error {
	if scale <= 0 {
		scale = 1
	}
	dc := gg.NewContext(int(canvasWidth*scale), int(canvasHeight*scale))
	dc.SetColor(colorOr(slide.BackgroundColor, color.White))
	dc.Clear()

	for _, el := range slide.Elements {
		r := Rect{X: el.X * scale, Y: el.Y * scale, Width: el.Width * scale, Height: el.Height * scale}
		radius := el.Style.BorderRadius * scale

		switch el.Type {
		case ElementText:
			if bg, ok, _ := ParseColor(el.Style.BackgroundColor); ok {
				dc.SetColor(bg)
				dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, radius)
				dc.Fill()
			}
			drawTextPNG(dc, el, r, scale, fm)
		case ElementImage:
			if err := drawImagePNG(dc, el, r); err != nil {
				drawPlaceholderPNG(dc, r, "image", fm, scale)
			}
		case ElementShape:
			dc.SetColor(colorOr(el.Style.BackgroundColor, defaultShapeFill))
			dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, radius)
			dc.Fill()
		default:
			drawPlaceholderPNG(dc, r, string(el.Type), fm, scale)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

func drawTextPNG(dc *gg.Context, el Element, r Rect, scale float64, fm *FontMeasurer) {
	size := el.Style.FontSize * scale
	face := fm.Face(el.Style, size)
	dc.SetFontFace(face)
	dc.SetColor(colorOr(el.Style.Color, color.Black))

	pad := textPadding * scale
	lines := wrapText(el.Content, r.Width-2*pad, func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	})
	lineHeight := size * lineHeightFactor
	for i, line := range lines {
		top := r.Y + pad + float64(i)*lineHeight
		x, ax := r.X+pad, 0.0
		switch el.Style.TextAlign {
		case "center":
			x, ax = r.X+r.Width/2, 0.5
		case "right":
			x, ax = r.Right()-pad, 1
		}
		dc.DrawStringAnchored(line, x, top, ax, 1)
		if el.Style.Underline() && line != "" {
			lw, _ := dc.MeasureString(line)
			left := x - ax*lw
			base := top + size + 2*scale
			dc.SetLineWidth(1 * scale)
			dc.DrawLine(left, base, left+lw, base)
			dc.Stroke()
		}
	}
}

func drawImagePNG(dc *gg.Context, el Element, r Rect) error {
	_, data, err := decodeDataURL(el.Content)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "decode image")
	}
	w, h := int(r.Width), int(r.Height)
	if w <= 0 || h <= 0 {
		return errors.New("empty image box")
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	dc.DrawImage(dst, int(r.X), int(r.Y))
	return nil
}

func drawPlaceholderPNG(dc *gg.Context, r Rect, label string, fm *FontMeasurer, scale float64) {
	dc.SetColor(placeholderFill)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()
	dc.SetColor(placeholderStroke)
	dc.SetLineWidth(1 * scale)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Stroke()
	dc.SetFontFace(fm.Face(defaultStyle(), 12*scale))
	dc.DrawStringAnchored(label, r.X+r.Width/2, r.Y+r.Height/2, 0.5, 0.5)
}
