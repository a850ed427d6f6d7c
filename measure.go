package main

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// TextMeasurer returns the rendered height of text laid out in a box of the
// given width, padding included.
type TextMeasurer interface {
	Measure(text string, style Style, width float64) float64
}

type faceKey struct {
	variant string
	size    float64
}

// FontMeasurer lays text out with the Go font family. Faces are cached per
// variant and size. A face is not safe for concurrent use, so renderers
// running off the UI goroutine should build their own FontMeasurer.
type FontMeasurer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

func NewFontMeasurer() (*FontMeasurer, error) {
	m := &FontMeasurer{
		fonts: make(map[string]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for name, ttf := range map[string][]byte{
		"regular":     goregular.TTF,
		"bold":        gobold.TTF,
		"italic":      goitalic.TTF,
		"bold-italic": gobolditalic.TTF,
		"mono":        gomono.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s font", name)
		}
		m.fonts[name] = f
	}
	return m, nil
}

func fontVariant(s Style) string {
	family := strings.ToLower(s.FontFamily)
	if strings.Contains(family, "mono") || strings.Contains(family, "courier") {
		return "mono"
	}
	switch {
	case s.Bold() && s.Italic():
		return "bold-italic"
	case s.Bold():
		return "bold"
	case s.Italic():
		return "italic"
	}
	return "regular"
}

// Face returns a cached face for the style at size px.
func (m *FontMeasurer) Face(s Style, size float64) font.Face {
	if size <= 0 {
		size = defaultFontSize
	}
	key := faceKey{variant: fontVariant(s), size: size}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(m.fonts[key.variant], &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m.faces[key] = f
	return f
}

func (m *FontMeasurer) Measure(text string, style Style, width float64) float64 {
	face := m.Face(style, style.FontSize)
	m.mu.Lock()
	lines := wrapText(text, width-2*textPadding, func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	})
	m.mu.Unlock()
	return float64(len(lines))*style.FontSize*lineHeightFactor + 2*textPadding
}

// wrapText breaks text into lines no wider than maxWidth, honouring
// explicit newlines. A single word wider than maxWidth gets its own line.
func wrapText(text string, maxWidth float64, measure func(string) float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(candidate) <= maxWidth {
				line = candidate
				continue
			}
			out = append(out, line)
			line = w
		}
		out = append(out, line)
	}
	return out
}

// CharMeasurer assumes every glyph is a fixed fraction of the font size
// wide. It needs no font files, which makes it useful for headless runs.
type CharMeasurer struct {
	Advance float64
}

func (c CharMeasurer) Measure(text string, style Style, width float64) float64 {
	adv := c.Advance
	if adv <= 0 {
		adv = 0.5
	}
	lines := wrapText(text, width-2*textPadding, func(s string) float64 {
		return float64(len([]rune(s))) * adv * style.FontSize
	})
	return math.Ceil(float64(len(lines))*style.FontSize*lineHeightFactor) + 2*textPadding
}
