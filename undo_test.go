package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docWithSlideIDs(ids ...string) Document {
	return deckOf(ids...)
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, -1, h.Cursor())
	_, ok := h.Undo()
	assert.False(t, ok)

	h.Push(docWithSlideIDs("a"))
	h.Push(docWithSlideIDs("a", "b"))
	h.Push(docWithSlideIDs("a", "b", "c"))
	require.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())
	assert.False(t, h.CanRedo())

	doc, ok := h.Undo()
	require.True(t, ok)
	assert.Len(t, doc.Slides, 2)

	doc, ok = h.Undo()
	require.True(t, ok)
	assert.Len(t, doc.Slides, 1)
	assert.False(t, h.CanUndo())

	doc, ok = h.Redo()
	require.True(t, ok)
	assert.Len(t, doc.Slides, 2)
}

func TestHistoryPushDropsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(docWithSlideIDs("a"))
	h.Push(docWithSlideIDs("a", "b"))
	h.Undo()
	require.True(t, h.CanRedo())

	h.Push(docWithSlideIDs("x"))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())
	doc, _ := h.Undo()
	assert.Equal(t, "a", doc.Slides[0].ID)
}

func TestHistoryEntriesAreIsolated(t *testing.T) {
	h := NewHistory()
	doc := docWithSlideIDs("a")
	doc.Slides[0].Elements = []Element{{ID: "e", X: 1}}
	h.Push(doc)
	doc.Slides[0].Elements[0].X = 99
	h.Push(doc)

	got, _ := h.Undo()
	assert.Equal(t, 1.0, got.Slides[0].Elements[0].X)

	got.Slides[0].Elements[0].X = 42
	h.Redo()
	again, _ := h.Undo()
	assert.Equal(t, 1.0, again.Slides[0].Elements[0].X)
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.Push(docWithSlideIDs("a"))
	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Cursor())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementText)
	require.NoError(t, e.UpdateStyle(PropColor, "#ff0000"))
	require.NoError(t, e.AddSlide())
	before := e.Document()

	require.NoError(t, e.Undo())
	require.NoError(t, e.Undo())
	require.NoError(t, e.Redo())
	require.NoError(t, e.Redo())
	assert.Equal(t, before, e.Document())
	assert.False(t, e.History().CanRedo())
}

func TestResetStartsOver(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementShape)
	e.AddSlide()
	e.Reset()

	assert.Equal(t, 1, e.SlideCount())
	assert.Equal(t, 0, e.History().Len())
	assert.Empty(t, e.SelectedID())
	assert.False(t, e.HasSlideClipboard())
}
