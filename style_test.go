package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleWith(t *testing.T) {
	tests := []struct {
		prop    StyleProperty
		value   string
		check   func(Style) bool
		wantErr error
	}{
		{PropFontSize, "24", func(s Style) bool { return s.FontSize == 24 }, nil},
		{PropFontSize, "18px", func(s Style) bool { return s.FontSize == 18 }, nil},
		{PropFontSize, "0", nil, ErrInvalidStyleValue},
		{PropFontSize, "huge", nil, ErrInvalidStyleValue},
		{PropFontFamily, "Courier New", func(s Style) bool { return s.FontFamily == "Courier New" }, nil},
		{PropFontFamily, " ", nil, ErrInvalidStyleValue},
		{PropColor, "red", func(s Style) bool { return s.Color == "#ff0000" }, nil},
		{PropColor, "#ABC", func(s Style) bool { return s.Color == "#aabbcc" }, nil},
		{PropColor, "transparent", nil, ErrInvalidStyleValue},
		{PropColor, "#zzzzzz", nil, ErrInvalidStyleValue},
		{PropBackgroundColor, "transparent", func(s Style) bool { return s.BackgroundColor == "transparent" }, nil},
		{PropBackgroundColor, "#00ff00", func(s Style) bool { return s.BackgroundColor == "#00ff00" }, nil},
		{PropBorderRadius, "8", func(s Style) bool { return s.BorderRadius == 8 }, nil},
		{PropBorderRadius, "-1", nil, ErrInvalidStyleValue},
		{PropFontWeight, "bold", func(s Style) bool { return s.Bold() }, nil},
		{PropFontWeight, "heavy", nil, ErrInvalidStyleValue},
		{PropFontStyle, "italic", func(s Style) bool { return s.Italic() }, nil},
		{PropTextDecoration, "underline", func(s Style) bool { return s.Underline() }, nil},
		{PropTextAlign, "justify", func(s Style) bool { return s.TextAlign == "justify" }, nil},
		{PropTextAlign, "middle", nil, ErrInvalidStyleValue},
		{StyleProperty("opacity"), "1", nil, ErrUnknownStyleProperty},
	}
	for _, tt := range tests {
		t.Run(string(tt.prop)+"="+tt.value, func(t *testing.T) {
			got, err := defaultStyle().With(tt.prop, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, defaultStyle(), got)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.check(got), "%+v", got)
		})
	}
}

func TestParseStyleProperty(t *testing.T) {
	p, err := ParseStyleProperty("textAlign")
	require.NoError(t, err)
	assert.Equal(t, PropTextAlign, p)

	_, err = ParseStyleProperty("align")
	assert.ErrorIs(t, err, ErrUnknownStyleProperty)
}

func TestParseColor(t *testing.T) {
	_, ok, err := ParseColor("")
	assert.NoError(t, err)
	assert.False(t, ok)

	c, ok, err := ParseColor("  White ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "#ffffff", c.Hex())

	_, _, err = ParseColor("not-a-colour")
	assert.ErrorIs(t, err, ErrInvalidStyleValue)
}

func TestUpdateStyleNeedsSelection(t *testing.T) {
	e := newTestEditor(t)
	assert.ErrorIs(t, e.UpdateStyle(PropColor, "#ff0000"), ErrNoSelection)
	assert.ErrorIs(t, e.ToggleBold(), ErrNoSelection)
}

func TestUpdateStyleCommitsOnlyOnChange(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementText)

	require.NoError(t, e.UpdateStyle(PropColor, "#ff0000"))
	assert.Equal(t, 2, e.History().Len())
	require.NoError(t, e.UpdateStyle(PropColor, "red"))
	assert.Equal(t, 2, e.History().Len())

	assert.ErrorIs(t, e.UpdateStyle(PropFontSize, "-3"), ErrInvalidStyleValue)
	assert.Equal(t, 2, e.History().Len())
}

func TestFontSizeChangeRemeasuresText(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementText)

	require.NoError(t, e.UpdateStyle(PropFontSize, "40"))
	el := e.Selected()
	assert.Equal(t, 40.0, el.Style.FontSize)
	assert.Equal(t, 80.0, el.Height)

	require.NoError(t, e.UpdateStyle(PropColor, "#123456"))
	assert.Equal(t, 80.0, e.Selected().Height, "colour does not touch layout")
}

func TestToggles(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementText)

	require.NoError(t, e.ToggleBold())
	require.NoError(t, e.ToggleItalic())
	require.NoError(t, e.ToggleUnderline())
	st := e.Selected().Style
	assert.True(t, st.Bold())
	assert.True(t, st.Italic())
	assert.True(t, st.Underline())

	require.NoError(t, e.ToggleBold())
	assert.False(t, e.Selected().Style.Bold())
	assert.Equal(t, 5, e.History().Len())

	require.NoError(t, e.SetTextAlign("right"))
	assert.Equal(t, "right", e.Selected().Style.TextAlign)
}

func TestToolbarFollowsTextSelection(t *testing.T) {
	e := newTestEditor(t)
	assert.False(t, e.Toolbar().Visible)

	e.AddElement(ElementShape)
	assert.False(t, e.Toolbar().Visible)

	id, _ := e.AddElement(ElementText)
	tb := e.Toolbar()
	assert.True(t, tb.Visible)
	assert.Equal(t, id, tb.ElementID)
	assert.Equal(t, defaultFontSize, tb.Style.FontSize)

	e.ClearSelection()
	assert.False(t, e.Toolbar().Visible)
}

func TestSetSlideBackground(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.SetSlideBackground("#FFF"))
	assert.Equal(t, 0, e.History().Len(), "same colour is not a change")

	assert.ErrorIs(t, e.SetSlideBackground("navy-ish"), ErrInvalidStyleValue)
	require.NoError(t, e.SetSlideBackground("#202020"))
	assert.Equal(t, "#202020", e.CurrentSlide().BackgroundColor)
	assert.Equal(t, 1, e.History().Len())
}
