package main

import (
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrBusy                 = errors.New("editing is disabled while a save or export is running")
	ErrLastSlide            = errors.New("a deck must keep at least one slide")
	ErrNoSelection          = errors.New("no element selected")
	ErrNotEditing           = errors.New("no text element is being edited")
	ErrSlideOutOfRange      = errors.New("slide index out of range")
	ErrUnknownStyleProperty = errors.New("unknown style property")
	ErrInvalidStyleValue    = errors.New("invalid style value")
	ErrUnknownElementType   = errors.New("unknown element type")
)

// Editor owns the whole editing session: the live document, its history,
// the pointer interaction in progress, selection and both clipboards.
type Editor struct {
	doc         Document
	history     *History
	interaction Interaction
	current     int
	selectedID  string
	editing     *textEdit

	slideClipboard   *Slide
	elementClipboard *Element
	menu             *ContextMenu
	slideDrag        slideDrag

	measurer TextMeasurer
	newID    func() string
	busy     bool
	log      *logrus.Entry
}

type textEdit struct {
	elementID string
	original  string
}

type EditorOption func(*Editor)

func WithLogger(log *logrus.Entry) EditorOption {
	return func(e *Editor) { e.log = log }
}

func WithIDGenerator(fn func() string) EditorOption {
	return func(e *Editor) { e.newID = fn }
}

func WithDocument(doc Document) EditorOption {
	return func(e *Editor) { e.doc = doc.Clone() }
}

func NewEditor(measurer TextMeasurer, opts ...EditorOption) *Editor {
	e := &Editor{
		history:  NewHistory(),
		measurer: measurer,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = logrus.NewEntry(l)
	}
	e.doc.Normalize(e.newID)
	return e
}

// Reset starts a new editing session with a single blank slide.
func (e *Editor) Reset() {
	e.doc = Document{Slides: []Slide{newSlide(e.newID())}}
	e.history.Reset()
	e.current = 0
	e.selectedID = ""
	e.editing = nil
	e.interaction = Interaction{}
	e.slideClipboard = nil
	e.elementClipboard = nil
	e.menu = nil
	e.slideDrag = slideDrag{}
}

func (e *Editor) Document() Document { return e.doc.Clone() }

// Snapshot returns a deep copy for export or upload, taken at call time.
func (e *Editor) Snapshot() Document { return e.doc.Clone() }

func (e *Editor) History() *History { return e.history }

func (e *Editor) Interaction() Interaction { return e.interaction }

func (e *Editor) CurrentIndex() int { return e.current }

func (e *Editor) CurrentSlide() *Slide { return &e.doc.Slides[e.current] }

func (e *Editor) SelectedID() string { return e.selectedID }

func (e *Editor) Busy() bool { return e.busy }

func (e *Editor) SetBusy(busy bool) {
	e.busy = busy
	if busy {
		e.interaction = Interaction{}
		e.slideDrag = slideDrag{}
	}
}

func (e *Editor) Selected() *Element {
	if e.selectedID == "" {
		return nil
	}
	s := e.CurrentSlide()
	if i := s.elementIndex(e.selectedID); i >= 0 {
		return &s.Elements[i]
	}
	return nil
}

// EditingElement is the text element in edit mode, if any.
func (e *Editor) EditingElement() *Element {
	if e.editing == nil {
		return nil
	}
	return e.findElement(e.editing.elementID)
}

func (e *Editor) findElement(id string) *Element {
	for i := range e.doc.Slides {
		s := &e.doc.Slides[i]
		if j := s.elementIndex(id); j >= 0 {
			return &s.Elements[j]
		}
	}
	return nil
}

// commit records the live document as a new history entry. Edit-mode flags
// are session state, not document state, so snapshots never carry them.
func (e *Editor) commit(action string) {
	snap := e.doc.Clone()
	for i := range snap.Slides {
		for j := range snap.Slides[i].Elements {
			snap.Slides[i].Elements[j].IsEditing = false
		}
	}
	e.history.Push(snap)
	e.log.WithFields(logrus.Fields{
		"action":  action,
		"slide":   e.current,
		"entries": e.history.Len(),
	}).Debug("commit")
}

func (e *Editor) AddElement(t ElementType) (string, error) {
	if !t.Valid() {
		return "", errors.Wrapf(ErrUnknownElementType, "%q", t)
	}
	return e.insertElement(defaultElement(e.newID(), t))
}

// AddImage places an image element whose content is a data URL.
func (e *Editor) AddImage(dataURL string) (string, error) {
	el := defaultElement(e.newID(), ElementImage)
	el.Content = dataURL
	return e.insertElement(el)
}

func (e *Editor) insertElement(el Element) (string, error) {
	if e.busy {
		return "", ErrBusy
	}
	e.endEdit()
	s := e.CurrentSlide()
	s.Elements = append(s.Elements, el)
	e.selectedID = el.ID
	e.commit("add-element")
	return el.ID, nil
}

func (e *Editor) DeleteSelected() error {
	if e.busy {
		return ErrBusy
	}
	if e.selectedID == "" {
		return ErrNoSelection
	}
	s := e.CurrentSlide()
	i := s.elementIndex(e.selectedID)
	if i < 0 {
		e.selectedID = ""
		return ErrNoSelection
	}
	if e.editing != nil && e.editing.elementID == e.selectedID {
		e.editing = nil
	}
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
	e.selectedID = ""
	e.interaction = Interaction{}
	e.commit("delete-element")
	return nil
}

func (e *Editor) ClearSelection() {
	e.endEdit()
	e.selectedID = ""
}

func defaultElement(id string, t ElementType) Element {
	el := Element{
		ID:     id,
		Type:   t,
		X:      defaultElementX,
		Y:      defaultElementY,
		Width:  defaultElementWidth,
		Height: defaultElementHeight,
		Style:  defaultStyle(),
	}
	switch t {
	case ElementText:
		el.Content = "New text"
	case ElementImage:
		el.Height = 150
	case ElementShape:
		el.Height = 120
		el.Style.BackgroundColor = "#4a90d9"
	case ElementTable:
		el.Width, el.Height = 300, 150
		el.Style.BackgroundColor = "#f2f2f2"
	case ElementGraphic:
		el.Width, el.Height = 200, 150
		el.Style.BackgroundColor = "#e0e0e0"
	}
	return el
}

func defaultStyle() Style {
	return Style{
		FontSize:        defaultFontSize,
		FontFamily:      defaultFontFamily,
		Color:           defaultTextColor,
		BackgroundColor: "transparent",
		FontWeight:      "normal",
		FontStyle:       "normal",
		TextDecoration:  "none",
		TextAlign:       "left",
	}
}
