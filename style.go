package main

import (
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

type StyleProperty string

const (
	PropFontSize        StyleProperty = "fontSize"
	PropFontFamily      StyleProperty = "fontFamily"
	PropColor           StyleProperty = "color"
	PropBackgroundColor StyleProperty = "backgroundColor"
	PropBorderRadius    StyleProperty = "borderRadius"
	PropFontWeight      StyleProperty = "fontWeight"
	PropFontStyle       StyleProperty = "fontStyle"
	PropTextDecoration  StyleProperty = "textDecoration"
	PropTextAlign       StyleProperty = "textAlign"
)

var styleProperties = []StyleProperty{
	PropFontSize, PropFontFamily, PropColor, PropBackgroundColor, PropBorderRadius,
	PropFontWeight, PropFontStyle, PropTextDecoration, PropTextAlign,
}

func ParseStyleProperty(name string) (StyleProperty, error) {
	for _, p := range styleProperties {
		if string(p) == name {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStyleProperty, "%q", name)
}

// affectsLayout reports whether changing p can change wrapped text height.
func (p StyleProperty) affectsLayout() bool {
	switch p {
	case PropFontSize, PropFontFamily, PropFontWeight, PropFontStyle:
		return true
	}
	return false
}

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"gray":   "#808080",
	"grey":   "#808080",
	"orange": "#ffa500",
	"purple": "#800080",
}

// ParseColor accepts #rgb, #rrggbb, a handful of CSS names and
// "transparent". ok is false for transparent.
func ParseColor(s string) (c colorful.Color, ok bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" {
		return colorful.Color{}, false, nil
	}
	if hex, named := namedColors[s]; named {
		s = hex
	}
	c, err = colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false, errors.Wrapf(ErrInvalidStyleValue, "color %q", s)
	}
	return c, true, nil
}

// colorOr resolves s to an opaque color, or fallback when s is transparent
// or unparseable.
func colorOr(s string, fallback color.Color) color.Color {
	c, ok, err := ParseColor(s)
	if err != nil || !ok {
		return fallback
	}
	return c
}

func (s Style) With(p StyleProperty, value string) (Style, error) {
	value = strings.TrimSpace(value)
	invalid := func() (Style, error) {
		return s, errors.Wrapf(ErrInvalidStyleValue, "%s=%q", p, value)
	}
	switch p {
	case PropFontSize:
		v, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		if err != nil || v < minFontSize || v > maxFontSize {
			return invalid()
		}
		s.FontSize = v
	case PropFontFamily:
		if value == "" {
			return invalid()
		}
		s.FontFamily = value
	case PropColor, PropBackgroundColor:
		c, ok, err := ParseColor(value)
		if err != nil {
			return s, err
		}
		out := "transparent"
		if ok {
			out = c.Hex()
		}
		if p == PropColor {
			if !ok {
				return invalid()
			}
			s.Color = out
		} else {
			s.BackgroundColor = out
		}
	case PropBorderRadius:
		v, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		if err != nil || v < 0 {
			return invalid()
		}
		s.BorderRadius = v
	case PropFontWeight:
		if value != "normal" && value != "bold" {
			return invalid()
		}
		s.FontWeight = value
	case PropFontStyle:
		if value != "normal" && value != "italic" {
			return invalid()
		}
		s.FontStyle = value
	case PropTextDecoration:
		if value != "none" && value != "underline" {
			return invalid()
		}
		s.TextDecoration = value
	case PropTextAlign:
		switch value {
		case "left", "center", "right", "justify":
			s.TextAlign = value
		default:
			return invalid()
		}
	default:
		return s, errors.Wrapf(ErrUnknownStyleProperty, "%q", p)
	}
	return s, nil
}

// UpdateStyle sets one style property on the selected element.
func (e *Editor) UpdateStyle(p StyleProperty, value string) error {
	if e.busy {
		return ErrBusy
	}
	el := e.Selected()
	if el == nil {
		return ErrNoSelection
	}
	st, err := el.Style.With(p, value)
	if err != nil {
		return err
	}
	if st == el.Style {
		return nil
	}
	el.Style = st
	if el.Type == ElementText && p.affectsLayout() {
		el.Height = e.measureWith(el, st.FontSize, el.Width)
	}
	e.commit("style-" + string(p))
	return nil
}

func (e *Editor) ToggleBold() error {
	return e.toggle(PropFontWeight, func(s Style) bool { return s.Bold() }, "bold", "normal")
}

func (e *Editor) ToggleItalic() error {
	return e.toggle(PropFontStyle, func(s Style) bool { return s.Italic() }, "italic", "normal")
}

func (e *Editor) ToggleUnderline() error {
	return e.toggle(PropTextDecoration, func(s Style) bool { return s.Underline() }, "underline", "none")
}

func (e *Editor) toggle(p StyleProperty, on func(Style) bool, onValue, offValue string) error {
	el := e.Selected()
	if el == nil {
		return ErrNoSelection
	}
	if on(el.Style) {
		return e.UpdateStyle(p, offValue)
	}
	return e.UpdateStyle(p, onValue)
}

func (e *Editor) SetTextAlign(align string) error {
	return e.UpdateStyle(PropTextAlign, align)
}

func (e *Editor) SetSlideBackground(value string) error {
	if e.busy {
		return ErrBusy
	}
	c, ok, err := ParseColor(value)
	if err != nil {
		return err
	}
	bg := "transparent"
	if ok {
		bg = c.Hex()
	}
	s := e.CurrentSlide()
	if s.BackgroundColor == bg {
		return nil
	}
	s.BackgroundColor = bg
	e.commit("slide-background")
	return nil
}

// Toolbar is what the text-format toolbar shows. It is only visible while
// a text element is selected.
type Toolbar struct {
	Visible   bool
	ElementID string
	Style     Style
}

func (e *Editor) Toolbar() Toolbar {
	el := e.Selected()
	if el == nil || el.Type != ElementText {
		return Toolbar{}
	}
	return Toolbar{Visible: true, ElementID: el.ID, Style: el.Style}
}
