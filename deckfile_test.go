package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	e := newTestEditor(t)
	e.AddElement(ElementText)
	require.NoError(t, e.StartEdit())
	require.NoError(t, e.EditText("draft"))
	meta := validMetadata()

	require.NoError(t, SaveDeck(path, meta, e.Snapshot()))

	doc, gotMeta, err := LoadDeck(path, sequentialIDs("x"))
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	require.Len(t, doc.Slides, 1)
	require.Len(t, doc.Slides[0].Elements, 1)
	el := doc.Slides[0].Elements[0]
	assert.Equal(t, "draft", el.Content)
	assert.False(t, el.IsEditing)
	assert.Equal(t, e.CurrentSlide().ID, doc.Slides[0].ID)

	// the live document still has the edit flag; only the file drops it
	assert.True(t, e.CurrentSlide().Elements[0].IsEditing)
}

func TestSaveDeckReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	require.NoError(t, SaveDeck(path, SlideMetadata{Title: "one"}, deckOf("a")))
	require.NoError(t, SaveDeck(path, SlideMetadata{Title: "two"}, deckOf("a", "b")))

	doc, meta, err := LoadDeck(path, sequentialIDs("x"))
	require.NoError(t, err)
	assert.Equal(t, "two", meta.Title)
	assert.Len(t, doc.Slides, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoadDeckErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadDeck(filepath.Join(dir, "missing.json"), sequentialIDs("x"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{"), 0644))
	_, _, err = LoadDeck(garbage, sequentialIDs("x"))
	assert.Error(t, err)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"format":"slidedeck/v9","slides":[]}`), 0644))
	_, _, err = LoadDeck(future, sequentialIDs("x"))
	assert.ErrorContains(t, err, "unsupported format")
}

func TestLoadDeckNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"slides":[{"elements":[{"type":"text","width":1,"height":1}]}]}`), 0644))

	doc, _, err := LoadDeck(path, sequentialIDs("x"))
	require.NoError(t, err)
	s := doc.Slides[0]
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, defaultSlideBackground, s.BackgroundColor)
	assert.NotEmpty(t, s.Elements[0].ID)
	assert.Equal(t, minRestWidth, s.Elements[0].Width)
}
