package main

import (
	"encoding/json"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// writeSystemClipboard is swapped out in tests.
var writeSystemClipboard = clipboard.WriteAll

type ContextMenu struct {
	SlideIndex int
	Items      []MenuItem
}

type MenuItem struct {
	Action  MenuAction
	Label   string
	Enabled bool
}

type slideDrag struct {
	active bool
	source int
	target int
}

func (e *Editor) SlideCount() int { return len(e.doc.Slides) }

func (e *Editor) SelectSlide(i int) error {
	if i < 0 || i >= len(e.doc.Slides) {
		return ErrSlideOutOfRange
	}
	if i == e.current {
		return nil
	}
	e.endEdit()
	e.current = i
	e.selectedID = ""
	e.interaction = Interaction{}
	return nil
}

func (e *Editor) Menu() *ContextMenu { return e.menu }

func (e *Editor) OpenContextMenu(i int) (*ContextMenu, error) {
	if e.busy {
		return nil, ErrBusy
	}
	if err := e.SelectSlide(i); err != nil {
		return nil, err
	}
	e.menu = &ContextMenu{
		SlideIndex: i,
		Items: []MenuItem{
			{Action: MenuCopy, Label: "Copy", Enabled: true},
			{Action: MenuPaste, Label: "Paste", Enabled: e.slideClipboard != nil},
			{Action: MenuDuplicate, Label: "Duplicate", Enabled: true},
			{Action: MenuDelete, Label: "Delete", Enabled: len(e.doc.Slides) > 1},
			{Action: MenuAdd, Label: "Add slide", Enabled: true},
		},
	}
	return e.menu, nil
}

func (e *Editor) CloseContextMenu() { e.menu = nil }

// RunMenuAction runs an item of the open context menu and closes it.
func (e *Editor) RunMenuAction(a MenuAction) error {
	menu := e.menu
	e.menu = nil
	if menu == nil {
		return nil
	}
	for _, item := range menu.Items {
		if item.Action != a {
			continue
		}
		if !item.Enabled {
			if a == MenuDelete {
				return ErrLastSlide
			}
			return nil
		}
		switch a {
		case MenuCopy:
			return e.CopySlide(menu.SlideIndex)
		case MenuPaste:
			return e.PasteSlide()
		case MenuDuplicate:
			return e.DuplicateSlide(menu.SlideIndex)
		case MenuDelete:
			return e.DeleteSlide(menu.SlideIndex)
		case MenuAdd:
			return e.AddSlide()
		}
	}
	return nil
}

func (e *Editor) CopySlide(i int) error {
	if i < 0 || i >= len(e.doc.Slides) {
		return ErrSlideOutOfRange
	}
	c := e.doc.Slides[i].Clone()
	for j := range c.Elements {
		c.Elements[j].IsEditing = false
	}
	e.slideClipboard = &c

	if data, err := json.Marshal(c); err == nil {
		if err := writeSystemClipboard(string(data)); err != nil {
			e.log.WithError(err).Debug("system clipboard unavailable")
		}
	}
	return nil
}

func (e *Editor) HasSlideClipboard() bool { return e.slideClipboard != nil }

// freshCopy clones s and gives the slide and every element new ids.
func (e *Editor) freshCopy(s Slide) Slide {
	c := s.Clone()
	c.ID = e.newID()
	for j := range c.Elements {
		c.Elements[j].ID = e.newID()
		c.Elements[j].IsEditing = false
	}
	return c
}

func (e *Editor) insertSlide(at int, s Slide, action string) {
	e.endEdit()
	slides := append(e.doc.Slides, Slide{})
	copy(slides[at+1:], slides[at:])
	slides[at] = s
	e.doc.Slides = slides
	e.current = at
	e.selectedID = ""
	e.commit(action)
	e.log.WithFields(logrus.Fields{"slide_id": s.ID, "index": at}).Info(action)
}

func (e *Editor) PasteSlide() error {
	if e.busy {
		return ErrBusy
	}
	if e.slideClipboard == nil {
		return nil
	}
	e.insertSlide(e.current+1, e.freshCopy(*e.slideClipboard), "paste-slide")
	return nil
}

func (e *Editor) DuplicateSlide(i int) error {
	if e.busy {
		return ErrBusy
	}
	if i < 0 || i >= len(e.doc.Slides) {
		return ErrSlideOutOfRange
	}
	e.insertSlide(i+1, e.freshCopy(e.doc.Slides[i]), "duplicate-slide")
	return nil
}

func (e *Editor) AddSlide() error {
	if e.busy {
		return ErrBusy
	}
	e.insertSlide(e.current+1, newSlide(e.newID()), "add-slide")
	return nil
}

func (e *Editor) DeleteSlide(i int) error {
	if e.busy {
		return ErrBusy
	}
	if i < 0 || i >= len(e.doc.Slides) {
		return ErrSlideOutOfRange
	}
	if len(e.doc.Slides) == 1 {
		return ErrLastSlide
	}
	e.endEdit()
	id := e.doc.Slides[i].ID
	e.doc.Slides = append(e.doc.Slides[:i], e.doc.Slides[i+1:]...)
	if e.current >= len(e.doc.Slides) || e.current > i {
		e.current--
	}
	if e.current < 0 {
		e.current = 0
	}
	e.selectedID = ""
	e.commit("delete-slide")
	e.log.WithField("slide_id", id).Info("delete-slide")
	return nil
}

func (e *Editor) BeginSlideDrag(i int, button PointerButton) {
	if e.busy || button != ButtonPrimary || i < 0 || i >= len(e.doc.Slides) {
		return
	}
	e.slideDrag = slideDrag{active: true, source: i, target: i}
}

func (e *Editor) HoverSlide(i int) {
	if e.slideDrag.active && i >= 0 && i < len(e.doc.Slides) {
		e.slideDrag.target = i
	}
}

// DropTarget is the thumbnail to highlight during a drag, or -1.
func (e *Editor) DropTarget() int {
	if !e.slideDrag.active || e.slideDrag.target == e.slideDrag.source {
		return -1
	}
	return e.slideDrag.target
}

func (e *Editor) DraggingSlide() bool { return e.slideDrag.active }

func (e *Editor) CancelSlideDrag() { e.slideDrag = slideDrag{} }

// EndSlideDrag drops the dragged slide on thumbnail i. The slide takes i's
// position; dropping on the source only clears the drag.
func (e *Editor) EndSlideDrag(i int) error {
	d := e.slideDrag
	e.slideDrag = slideDrag{}
	if !d.active || i == d.source {
		return nil
	}
	if e.busy {
		return ErrBusy
	}
	if i < 0 || i >= len(e.doc.Slides) {
		return ErrSlideOutOfRange
	}
	return e.MoveSlide(d.source, i)
}

func (e *Editor) MoveSlide(from, to int) error {
	if e.busy {
		return ErrBusy
	}
	n := len(e.doc.Slides)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrSlideOutOfRange
	}
	if from == to {
		return nil
	}
	e.endEdit()
	moved := e.doc.Slides[from]
	rest := append(e.doc.Slides[:from:from], e.doc.Slides[from+1:]...)
	slides := make([]Slide, 0, n)
	slides = append(slides, rest[:to]...)
	slides = append(slides, moved)
	slides = append(slides, rest[to:]...)
	e.doc.Slides = slides
	e.current = to
	e.selectedID = ""
	e.commit("reorder-slide")
	e.log.WithFields(logrus.Fields{"slide_id": moved.ID, "from": from, "to": to}).Info("reorder-slide")
	return nil
}

var shortcutKeys = map[string]Shortcut{
	"ctrl+c":       ShortcutCopy,
	"ctrl+v":       ShortcutPaste,
	"ctrl+d":       ShortcutDuplicate,
	"ctrl+z":       ShortcutUndo,
	"ctrl+y":       ShortcutRedo,
	"ctrl+shift+z": ShortcutRedo,
	"delete":       ShortcutDelete,
	"backspace":    ShortcutDelete,
}

// ShortcutForKey maps a key name such as "ctrl+shift+z" to its shortcut.
func ShortcutForKey(key string) Shortcut {
	return shortcutKeys[strings.ToLower(key)]
}

// ResolveShortcut decides which scope a copy/paste/duplicate key acts on.
// Text editing wins over an element selection, which wins over the slide.
func (e *Editor) ResolveShortcut() ShortcutScope {
	if e.editing != nil {
		return ScopeText
	}
	if e.Selected() != nil {
		return ScopeElement
	}
	return ScopeSlide
}

func (e *Editor) HandleShortcut(sc Shortcut) error {
	switch sc {
	case ShortcutUndo:
		if e.editing != nil {
			return nil
		}
		return e.Undo()
	case ShortcutRedo:
		if e.editing != nil {
			return nil
		}
		return e.Redo()
	case ShortcutDelete:
		if e.editing != nil || e.selectedID == "" {
			return nil
		}
		return e.DeleteSelected()
	}

	switch e.ResolveShortcut() {
	case ScopeText:
		return nil
	case ScopeElement:
		switch sc {
		case ShortcutCopy:
			return e.CopyElement()
		case ShortcutPaste:
			return e.PasteElement()
		case ShortcutDuplicate:
			return e.DuplicateElement()
		}
	case ScopeSlide:
		switch sc {
		case ShortcutCopy:
			return e.CopySlide(e.current)
		case ShortcutPaste:
			return e.PasteSlide()
		case ShortcutDuplicate:
			return e.DuplicateSlide(e.current)
		}
	}
	return errors.Errorf("unhandled shortcut %d", sc)
}
