package main

import "math"

// Interaction is the pointer gesture in progress. The zero value is Idle.
type Interaction struct {
	Kind      InteractionKind
	ElementID string
	Handle    Handle
	OffsetX   float64
	OffsetY   float64

	// geometry at pointer-down, and the live uncommitted geometry
	Start         Rect
	StartFontSize float64
	Preview       Rect
	PreviewFont   float64
	Moved         bool
}

func (i Interaction) Active() bool { return i.Kind != Idle }

func handlePoint(r Rect, h Handle) Point {
	p := Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	if h.west() {
		p.X = r.X
	}
	if h.east() {
		p.X = r.Right()
	}
	if h.north() {
		p.Y = r.Y
	}
	if h.south() {
		p.Y = r.Bottom()
	}
	return p
}

func hitHandle(r Rect, p Point) Handle {
	half := handleHitSize / 2
	for _, h := range allHandles {
		hp := handlePoint(r, h)
		if math.Abs(p.X-hp.X) <= half && math.Abs(p.Y-hp.Y) <= half {
			return h
		}
	}
	return HandleNone
}

// resizeRect moves the dragged edges of start so the handle sits at target,
// keeping the opposite edges anchored. Width and height never drop below
// the live minimums, whatever the pointer does.
func resizeRect(start Rect, h Handle, target Point) Rect {
	left, top := start.X, start.Y
	right, bottom := start.Right(), start.Bottom()

	w, hgt := start.Width, start.Height
	if h.east() {
		w = target.X - left
	}
	if h.west() {
		w = right - target.X
	}
	if h.south() {
		hgt = target.Y - top
	}
	if h.north() {
		hgt = bottom - target.Y
	}
	w = atLeast(minElementWidth, w)
	hgt = atLeast(minElementHeight, hgt)

	out := Rect{X: left, Y: top, Width: w, Height: hgt}
	if h.west() {
		out.X = right - w
	}
	if h.north() {
		out.Y = bottom - hgt
	}
	return out
}

// clampToCanvas keeps a committed rect fully on the canvas.
func clampToCanvas(r Rect) Rect {
	r.X = clamp(r.X, 0, math.Max(0, canvasWidth-r.Width))
	r.Y = clamp(r.Y, 0, math.Max(0, canvasHeight-r.Height))
	return r
}

// scaledFontSize is the font size after a corner resize from startWidth to
// newWidth, rounded to a tenth of a pixel and kept within the sizes a
// style accepts.
func scaledFontSize(font, startWidth, newWidth float64) float64 {
	if startWidth <= 0 || font <= 0 {
		return clamp(font, minFontSize, maxFontSize)
	}
	return clamp(math.Round(font*(newWidth/startWidth)*fontScaleBoost*10)/10, minFontSize, maxFontSize)
}

// atLeast also maps NaN to the floor so malformed input cannot leak into
// the document.
func atLeast(floor, v float64) float64 {
	if math.IsNaN(v) || v < floor {
		return floor
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
