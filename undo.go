package main

// History is a linear undo/redo log of full document snapshots. Entries past
// the cursor are dropped on every push, so redo never survives a fresh edit.
type History struct {
	entries []Document
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

func (h *History) Push(doc Document) {
	h.entries = append(h.entries[:h.cursor+1], doc.Clone())
	h.cursor = len(h.entries) - 1
}

func (h *History) Undo() (Document, bool) {
	if !h.CanUndo() {
		return Document{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

func (h *History) Redo() (Document, bool) {
	if !h.CanRedo() {
		return Document{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }

func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}

func (e *Editor) Undo() error {
	if e.busy {
		return ErrBusy
	}
	doc, ok := e.history.Undo()
	if !ok {
		return nil
	}
	e.restore(doc)
	e.log.WithField("cursor", e.history.Cursor()).Debug("undo")
	return nil
}

func (e *Editor) Redo() error {
	if e.busy {
		return ErrBusy
	}
	doc, ok := e.history.Redo()
	if !ok {
		return nil
	}
	e.restore(doc)
	e.log.WithField("cursor", e.history.Cursor()).Debug("redo")
	return nil
}

// restore swaps in a snapshot. Any element id held in selection or an
// in-flight interaction may not exist in it, so both are dropped.
func (e *Editor) restore(doc Document) {
	for i := range doc.Slides {
		for j := range doc.Slides[i].Elements {
			doc.Slides[i].Elements[j].IsEditing = false
		}
	}
	e.doc = doc
	e.selectedID = ""
	e.editing = nil
	e.interaction = Interaction{}
	if e.current >= len(e.doc.Slides) {
		e.current = len(e.doc.Slides) - 1
	}
	if e.current < 0 {
		e.current = 0
	}
}
