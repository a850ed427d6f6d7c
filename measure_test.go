package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeWidth(s string) float64 { return float64(len([]rune(s))) }

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "one two", 10, []string{"one two"}},
		{"wraps on words", "one two three", 8, []string{"one two", "three"}},
		{"keeps newlines", "a\n\nb", 10, []string{"a", "", "b"}},
		{"long word gets its own line", "a verylongword b", 5, []string{"a", "verylongword", "b"}},
		{"empty", "", 10, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width, runeWidth))
		})
	}
}

func TestCharMeasurer(t *testing.T) {
	m := CharMeasurer{}
	st := defaultStyle()

	one := m.Measure("short", st, 200)
	assert.Equal(t, float64(20+2*textPadding), one)

	// 23 chars at 8px each is wider than the 84px inside a 100px box
	two := m.Measure("abcdefghijk lmnopqrstuv", st, 100)
	assert.Equal(t, float64(39+2*textPadding), two)
}

func TestFontMeasurer(t *testing.T) {
	fm := newFontMeasurer(t)
	st := defaultStyle()

	short := fm.Measure("Hi", st, 200)
	assert.InDelta(t, st.FontSize*lineHeightFactor+2*textPadding, short, 0.001)

	long := fm.Measure("The quick brown fox jumps over the lazy dog again and again", st, 120)
	assert.Greater(t, long, short)

	big := st
	big.FontSize = 32
	assert.Greater(t, fm.Measure("Hi", big, 200), short)
}

func TestFontMeasurerCachesFaces(t *testing.T) {
	fm := newFontMeasurer(t)
	bold := defaultStyle()
	bold.FontWeight = "bold"

	a := fm.Face(bold, 20)
	b := fm.Face(bold, 20)
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Len(t, fm.faces, 1)

	fm.Face(defaultStyle(), 20)
	assert.Len(t, fm.faces, 2)
}

func TestFontVariant(t *testing.T) {
	st := defaultStyle()
	assert.Equal(t, "regular", fontVariant(st))
	st.FontStyle = "italic"
	assert.Equal(t, "italic", fontVariant(st))
	st.FontWeight = "bold"
	assert.Equal(t, "bold-italic", fontVariant(st))
	st.FontFamily = "Courier New"
	assert.Equal(t, "mono", fontVariant(st))
}
