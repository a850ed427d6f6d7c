package main

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSystemClipboard(t *testing.T) *string {
	t.Helper()
	var got string
	orig := writeSystemClipboard
	writeSystemClipboard = func(s string) error {
		got = s
		return nil
	}
	t.Cleanup(func() { writeSystemClipboard = orig })
	return &got
}

func slideIDs(e *Editor) []string {
	ids := make([]string, e.SlideCount())
	for i, s := range e.doc.Slides {
		ids[i] = s.ID
	}
	return ids
}

func TestReorderDropOnLastSlide(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B", "C")))

	e.BeginSlideDrag(0, ButtonPrimary)
	require.True(t, e.DraggingSlide())
	e.HoverSlide(2)
	assert.Equal(t, 2, e.DropTarget())
	require.NoError(t, e.EndSlideDrag(2))

	assert.Equal(t, []string{"B", "C", "A"}, slideIDs(e))
	assert.Equal(t, 1, e.History().Len())
	assert.Equal(t, 2, e.CurrentIndex())
	assert.False(t, e.DraggingSlide())
	assert.Equal(t, -1, e.DropTarget())
}

func TestReorderMovesBackwards(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B", "C", "D")))
	require.NoError(t, e.MoveSlide(3, 1))
	assert.Equal(t, []string{"A", "D", "B", "C"}, slideIDs(e))

	assert.Equal(t, 1, e.History().Len())

	// history holds post-mutation snapshots, so the first one has no
	// predecessor to return to
	assert.False(t, e.History().CanUndo())
	require.NoError(t, e.Undo())
	assert.Equal(t, []string{"A", "D", "B", "C"}, slideIDs(e))
}

func TestDropOnSourceIsNoop(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B", "C")))
	e.BeginSlideDrag(1, ButtonPrimary)
	assert.Equal(t, -1, e.DropTarget())
	require.NoError(t, e.EndSlideDrag(1))

	assert.Equal(t, []string{"A", "B", "C"}, slideIDs(e))
	assert.Equal(t, 0, e.History().Len())
}

func TestSlideDragNeedsPrimaryButton(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B")))
	e.BeginSlideDrag(0, ButtonSecondary)
	assert.False(t, e.DraggingSlide())
	require.NoError(t, e.EndSlideDrag(1))
	assert.Equal(t, []string{"A", "B"}, slideIDs(e))
}

func TestDeletingLastSlideIsRejected(t *testing.T) {
	e := newTestEditor(t)
	err := e.DeleteSlide(0)
	assert.True(t, errors.Is(err, ErrLastSlide))
	assert.Equal(t, 1, e.SlideCount())
	assert.Equal(t, 0, e.History().Len())

	menu, err := e.OpenContextMenu(0)
	require.NoError(t, err)
	for _, item := range menu.Items {
		if item.Action == MenuDelete {
			assert.False(t, item.Enabled)
		}
	}
	assert.ErrorIs(t, e.RunMenuAction(MenuDelete), ErrLastSlide)
	assert.Nil(t, e.Menu())
}

func TestDeleteSlideKeepsCurrentInRange(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B", "C")))
	require.NoError(t, e.SelectSlide(2))

	require.NoError(t, e.DeleteSlide(0))
	assert.Equal(t, []string{"B", "C"}, slideIDs(e))
	assert.Equal(t, 1, e.CurrentIndex())
	assert.Equal(t, "C", e.CurrentSlide().ID)

	require.NoError(t, e.DeleteSlide(1))
	assert.Equal(t, 0, e.CurrentIndex())
	assert.ErrorIs(t, e.DeleteSlide(5), ErrSlideOutOfRange)
}

func TestCopyPasteSlideGetsFreshIDs(t *testing.T) {
	clip := stubSystemClipboard(t)
	e := newTestEditor(t, WithDocument(deckOf("A")))
	elID, _ := e.AddElement(ElementShape)

	require.NoError(t, e.CopySlide(0))
	assert.True(t, e.HasSlideClipboard())
	var mirrored Slide
	require.NoError(t, json.Unmarshal([]byte(*clip), &mirrored))
	assert.Equal(t, "A", mirrored.ID)

	require.NoError(t, e.PasteSlide())
	require.Equal(t, 2, e.SlideCount())
	assert.Equal(t, 1, e.CurrentIndex())

	orig, pasted := e.doc.Slides[0], e.doc.Slides[1]
	assert.NotEqual(t, orig.ID, pasted.ID)
	require.Len(t, pasted.Elements, 1)
	assert.NotEqual(t, elID, pasted.Elements[0].ID)

	e.doc.Slides[1].Elements[0].X = 400
	assert.Equal(t, 100.0, e.doc.Slides[0].Elements[0].X)

	// pasting twice never reuses ids either
	require.NoError(t, e.PasteSlide())
	assert.NotEqual(t, e.doc.Slides[1].ID, e.doc.Slides[2].ID)
	assert.NotEqual(t, e.doc.Slides[1].Elements[0].ID, e.doc.Slides[2].Elements[0].ID)
}

func TestCopiedSlideIsASnapshot(t *testing.T) {
	stubSystemClipboard(t)
	e := newTestEditor(t, WithDocument(deckOf("A")))
	e.AddElement(ElementShape)
	require.NoError(t, e.CopySlide(0))

	e.CurrentSlide().Elements[0].X = 500
	require.NoError(t, e.PasteSlide())
	assert.Equal(t, 100.0, e.doc.Slides[1].Elements[0].X)
}

func TestDuplicateSlideInsertsAfterSource(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B")))
	require.NoError(t, e.DuplicateSlide(0))

	require.Equal(t, 3, e.SlideCount())
	assert.Equal(t, "A", e.doc.Slides[0].ID)
	assert.Equal(t, "B", e.doc.Slides[2].ID)
	assert.Equal(t, 1, e.CurrentIndex())
	assert.Equal(t, 1, e.History().Len())
}

func TestContextMenuItems(t *testing.T) {
	stubSystemClipboard(t)
	e := newTestEditor(t, WithDocument(deckOf("A", "B")))

	menu, err := e.OpenContextMenu(1)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CurrentIndex())
	enabled := map[MenuAction]bool{}
	for _, item := range menu.Items {
		enabled[item.Action] = item.Enabled
	}
	assert.Equal(t, map[MenuAction]bool{
		MenuCopy:      true,
		MenuPaste:     false,
		MenuDuplicate: true,
		MenuDelete:    true,
		MenuAdd:       true,
	}, enabled)

	require.NoError(t, e.RunMenuAction(MenuCopy))
	menu, _ = e.OpenContextMenu(0)
	for _, item := range menu.Items {
		if item.Action == MenuPaste {
			assert.True(t, item.Enabled)
		}
	}
	require.NoError(t, e.RunMenuAction(MenuPaste))
	assert.Equal(t, 3, e.SlideCount())
	assert.Equal(t, "B", e.doc.Slides[2].ID)
}

func TestSelectSlideDoesNotWriteHistory(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A", "B")))
	require.NoError(t, e.SelectSlide(1))
	assert.Equal(t, 0, e.History().Len())
	assert.ErrorIs(t, e.SelectSlide(2), ErrSlideOutOfRange)
	assert.ErrorIs(t, e.SelectSlide(-1), ErrSlideOutOfRange)
}

func TestShortcutScopePriority(t *testing.T) {
	clip := stubSystemClipboard(t)
	e := newTestEditor(t)
	assert.Equal(t, ScopeSlide, e.ResolveShortcut())

	e.AddElement(ElementText)
	assert.Equal(t, ScopeElement, e.ResolveShortcut())

	require.NoError(t, e.StartEdit())
	assert.Equal(t, ScopeText, e.ResolveShortcut())

	// while editing, copy belongs to the text field
	require.NoError(t, e.HandleShortcut(ShortcutCopy))
	assert.False(t, e.HasSlideClipboard())
	assert.Nil(t, e.elementClipboard)
	assert.Empty(t, *clip)

	require.NoError(t, e.EndEdit())
	e.ClearSelection()
	require.NoError(t, e.HandleShortcut(ShortcutCopy))
	assert.True(t, e.HasSlideClipboard())
	assert.Nil(t, e.elementClipboard)
}

func TestDuplicateShortcutOnSlide(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A")))
	require.NoError(t, e.HandleShortcut(ShortcutDuplicate))
	assert.Equal(t, 2, e.SlideCount())
}

func TestUndoRestoresSlideCountAndClampsCurrent(t *testing.T) {
	e := newTestEditor(t, WithDocument(deckOf("A")))
	e.AddElement(ElementShape)
	require.NoError(t, e.AddSlide())
	require.Equal(t, 1, e.CurrentIndex())

	require.NoError(t, e.HandleShortcut(ShortcutUndo))
	assert.Equal(t, 1, e.SlideCount())
	assert.Equal(t, 0, e.CurrentIndex())

	require.NoError(t, e.HandleShortcut(ShortcutRedo))
	assert.Equal(t, 2, e.SlideCount())
}

func TestUndoIgnoredWhileEditingText(t *testing.T) {
	e := newTestEditor(t)
	e.AddElement(ElementShape)
	e.AddElement(ElementText)
	require.NoError(t, e.StartEdit())

	require.NoError(t, e.HandleShortcut(ShortcutUndo))
	assert.Len(t, e.CurrentSlide().Elements, 2)
	assert.NotNil(t, e.EditingElement())
}

func TestShortcutForKey(t *testing.T) {
	tests := map[string]Shortcut{
		"ctrl+c":       ShortcutCopy,
		"ctrl+v":       ShortcutPaste,
		"ctrl+d":       ShortcutDuplicate,
		"ctrl+z":       ShortcutUndo,
		"ctrl+y":       ShortcutRedo,
		"ctrl+shift+z": ShortcutRedo,
		"Ctrl+Shift+Z": ShortcutRedo,
		"delete":       ShortcutDelete,
		"backspace":    ShortcutDelete,
		"x":            ShortcutNone,
	}
	for key, want := range tests {
		assert.Equal(t, want, ShortcutForKey(key), key)
	}
}

func TestRedoAliasThroughShortcuts(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.AddSlide())
	require.NoError(t, e.AddSlide())
	require.NoError(t, e.HandleShortcut(ShortcutForKey("ctrl+z")))
	require.Equal(t, 2, e.SlideCount())

	require.NoError(t, e.HandleShortcut(ShortcutForKey("ctrl+shift+z")))
	assert.Equal(t, 3, e.SlideCount())
}

func TestDeleteShortcutWithoutSelectionIsNoOp(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.AddSlide())
	entries := e.History().Len()

	require.NoError(t, e.HandleShortcut(ShortcutForKey("delete")))
	assert.Equal(t, 2, e.SlideCount())
	assert.Equal(t, entries, e.History().Len())
}
