package main

import "github.com/sirupsen/logrus"

// elementAt returns the topmost element of the current slide under p.
func (e *Editor) elementAt(p Point) *Element {
	s := e.CurrentSlide()
	for i := len(s.Elements) - 1; i >= 0; i-- {
		if s.Elements[i].Rect().Contains(p) {
			return &s.Elements[i]
		}
	}
	return nil
}

// HandleAt reports which resize handle of the selected element is under p.
func (e *Editor) HandleAt(p Point) Handle {
	sel := e.Selected()
	if sel == nil {
		return HandleNone
	}
	return hitHandle(sel.Rect(), p)
}

func (e *Editor) PointerDown(p Point, button PointerButton) error {
	if e.busy {
		return ErrBusy
	}
	if button != ButtonPrimary {
		return nil
	}
	e.menu = nil
	e.interaction = Interaction{}

	if sel := e.Selected(); sel != nil {
		if h := hitHandle(sel.Rect(), p); h != HandleNone {
			hp := handlePoint(sel.Rect(), h)
			e.interaction = Interaction{
				Kind:          ResizingElement,
				ElementID:     sel.ID,
				Handle:        h,
				OffsetX:       p.X - hp.X,
				OffsetY:       p.Y - hp.Y,
				Start:         sel.Rect(),
				StartFontSize: sel.Style.FontSize,
				Preview:       sel.Rect(),
				PreviewFont:   sel.Style.FontSize,
			}
			return nil
		}
	}

	el := e.elementAt(p)
	if el == nil {
		e.endEdit()
		e.selectedID = ""
		return nil
	}
	id := el.ID
	if e.editing != nil && e.editing.elementID != id {
		e.endEdit()
	}
	// endEdit may have committed; re-resolve the pointer into the slice
	el = e.findElement(id)
	e.selectedID = id
	if el.Type == ElementText && el.IsEditing {
		return nil
	}
	e.interaction = Interaction{
		Kind:          DraggingElement,
		ElementID:     id,
		OffsetX:       p.X - el.X,
		OffsetY:       p.Y - el.Y,
		Start:         el.Rect(),
		StartFontSize: el.Style.FontSize,
		Preview:       el.Rect(),
		PreviewFont:   el.Style.FontSize,
	}
	return nil
}

func (e *Editor) PointerMove(p Point) {
	it := &e.interaction
	switch it.Kind {
	case DraggingElement:
		it.Preview.X = p.X - it.OffsetX
		it.Preview.Y = p.Y - it.OffsetY
	case ResizingElement:
		el := e.findElement(it.ElementID)
		if el == nil {
			e.interaction = Interaction{}
			return
		}
		target := Point{X: p.X - it.OffsetX, Y: p.Y - it.OffsetY}
		r := resizeRect(it.Start, it.Handle, target)
		font := it.StartFontSize
		if el.Type == ElementText {
			switch {
			case it.Handle.corner():
				font = scaledFontSize(it.StartFontSize, it.Start.Width, r.Width)
				r.Height = e.measureWith(el, font, r.Width)
			case it.Handle == HandleE || it.Handle == HandleW:
				r.Height = e.measureWith(el, font, r.Width)
			}
			if it.Handle.north() {
				r.Y = it.Start.Bottom() - r.Height
			} else {
				r.Y = it.Start.Y
			}
		}
		it.Preview = r
		it.PreviewFont = font
	default:
		return
	}
	it.Moved = it.Preview != it.Start || it.PreviewFont != it.StartFontSize
}

// PointerUp ends any gesture. Front ends call it from a global release
// listener so a release outside the element or canvas still lands here.
func (e *Editor) PointerUp(p Point) {
	it := e.interaction
	if !it.Active() {
		return
	}
	e.PointerMove(p)
	it = e.interaction
	e.interaction = Interaction{}

	el := e.findElement(it.ElementID)
	if el == nil {
		return
	}
	switch it.Kind {
	case DraggingElement:
		if !it.Moved {
			if el.Type == ElementText {
				e.enterEdit(el)
			}
			return
		}
		el.SetRect(clampToCanvas(it.Preview))
		e.commit("move-element")
	case ResizingElement:
		if !it.Moved {
			return
		}
		r := it.Preview
		r.Width = atLeast(minElementWidth, r.Width)
		r.Height = atLeast(minElementHeight, r.Height)
		el.SetRect(r)
		el.Style.FontSize = it.PreviewFont
		e.commit("resize-element")
	}
	e.log.WithFields(logrus.Fields{
		"element_id": el.ID,
		"x":          el.X,
		"y":          el.Y,
		"width":      el.Width,
		"height":     el.Height,
	}).Debug("pointer gesture committed")
}

// RenderGeometry is where an element should be drawn right now: the live
// preview while it is being dragged or resized, its committed box otherwise.
func (e *Editor) RenderGeometry(el Element) (Rect, float64) {
	if e.interaction.Active() && e.interaction.ElementID == el.ID {
		return e.interaction.Preview, e.interaction.PreviewFont
	}
	return el.Rect(), el.Style.FontSize
}

func (e *Editor) enterEdit(el *Element) {
	if e.editing != nil && e.editing.elementID == el.ID {
		return
	}
	id := el.ID
	e.endEdit()
	el = e.findElement(id)
	if el == nil {
		return
	}
	el.IsEditing = true
	e.editing = &textEdit{elementID: id, original: el.Content}
}

// StartEdit puts the selected text element into edit mode.
func (e *Editor) StartEdit() error {
	if e.busy {
		return ErrBusy
	}
	el := e.Selected()
	if el == nil {
		return ErrNoSelection
	}
	if el.Type != ElementText {
		return ErrNotEditing
	}
	e.enterEdit(el)
	return nil
}

// EditText replaces the body of the element in edit mode and grows it to
// fit. History is only written when the edit ends.
func (e *Editor) EditText(content string) error {
	if e.busy {
		return ErrBusy
	}
	el := e.EditingElement()
	if el == nil {
		return ErrNotEditing
	}
	el.Content = content
	if h := e.measureWith(el, el.Style.FontSize, el.Width); h > el.Height {
		el.Height = h
	}
	return nil
}

func (e *Editor) EndEdit() error {
	if e.editing == nil {
		return ErrNotEditing
	}
	e.endEdit()
	return nil
}

func (e *Editor) endEdit() {
	if e.editing == nil {
		return
	}
	ed := e.editing
	e.editing = nil
	el := e.findElement(ed.elementID)
	if el == nil {
		return
	}
	el.IsEditing = false
	if el.Content != ed.original {
		e.commit("edit-text")
	}
}

func (e *Editor) measureWith(el *Element, fontSize, width float64) float64 {
	if e.measurer == nil {
		return el.Height
	}
	st := el.Style
	st.FontSize = fontSize
	return atLeast(minElementHeight, e.measurer.Measure(el.Content, st, width))
}

func (e *Editor) measureHeight(el Element, width float64) float64 {
	return e.measureWith(&el, el.Style.FontSize, width)
}

func (e *Editor) CopyElement() error {
	sel := e.Selected()
	if sel == nil {
		return ErrNoSelection
	}
	c := sel.Clone()
	c.IsEditing = false
	e.elementClipboard = &c
	return nil
}

// PasteElement drops a copy of the element clipboard onto the current
// slide, nudged so it does not hide the original.
func (e *Editor) PasteElement() error {
	if e.elementClipboard == nil {
		return nil
	}
	el := e.elementClipboard.Clone()
	el.ID = e.newID()
	el.SetRect(clampToCanvas(Rect{
		X:      el.X + pasteOffset,
		Y:      el.Y + pasteOffset,
		Width:  el.Width,
		Height: el.Height,
	}))
	_, err := e.insertElement(el)
	return err
}

func (e *Editor) DuplicateElement() error {
	if err := e.CopyElement(); err != nil {
		return err
	}
	return e.PasteElement()
}
