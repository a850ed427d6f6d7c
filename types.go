package main

type ElementType string

const (
	ElementText    ElementType = "text"
	ElementImage   ElementType = "image"
	ElementShape   ElementType = "shape"
	ElementTable   ElementType = "table"
	ElementGraphic ElementType = "graphic"
)

func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementImage, ElementShape, ElementTable, ElementGraphic:
		return true
	}
	return false
}

type Style struct {
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderRadius    float64 `json:"borderRadius"`
	FontWeight      string  `json:"fontWeight"`
	FontStyle       string  `json:"fontStyle"`
	TextDecoration  string  `json:"textDecoration"`
	TextAlign       string  `json:"textAlign"`
}

func (s Style) Bold() bool      { return s.FontWeight == "bold" }
func (s Style) Italic() bool    { return s.FontStyle == "italic" }
func (s Style) Underline() bool { return s.TextDecoration == "underline" }

type Element struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Content   string      `json:"content,omitempty"`
	IsEditing bool        `json:"isEditing"`
	Style     Style       `json:"style"`
}

// Clone returns a copy of the element. Element holds no reference types, so
// a value copy is already deep.
func (e Element) Clone() Element {
	return e
}

func (e Element) Rect() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

func (e *Element) SetRect(r Rect) {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
}

type Slide struct {
	ID              string    `json:"id"`
	Elements        []Element `json:"elements"`
	BackgroundColor string    `json:"backgroundColor"`
}

func (s Slide) Clone() Slide {
	out := Slide{ID: s.ID, BackgroundColor: s.BackgroundColor}
	out.Elements = make([]Element, len(s.Elements))
	for i, e := range s.Elements {
		out.Elements[i] = e.Clone()
	}
	return out
}

func (s *Slide) elementIndex(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

type Document struct {
	Slides []Slide `json:"slides"`
}

func (d Document) Clone() Document {
	out := Document{Slides: make([]Slide, len(d.Slides))}
	for i, s := range d.Slides {
		out.Slides[i] = s.Clone()
	}
	return out
}

// Normalize repairs geometry and ids that would violate the editor's
// invariants, for documents that did not come from the editor itself.
func (d *Document) Normalize(newID func() string) {
	if len(d.Slides) == 0 {
		d.Slides = []Slide{newSlide(newID())}
	}
	seen := make(map[string]bool)
	for i := range d.Slides {
		s := &d.Slides[i]
		if s.ID == "" || seen[s.ID] {
			s.ID = newID()
		}
		seen[s.ID] = true
		if s.BackgroundColor == "" {
			s.BackgroundColor = defaultSlideBackground
		}
		for j := range s.Elements {
			e := &s.Elements[j]
			if e.ID == "" || seen[e.ID] {
				e.ID = newID()
			}
			seen[e.ID] = true
			if !e.Type.Valid() {
				e.Type = ElementGraphic
			}
			e.IsEditing = false
			e.Width = atLeast(minRestWidth, e.Width)
			e.Height = atLeast(minElementHeight, e.Height)
			if e.Style.FontSize <= 0 {
				e.Style.FontSize = defaultFontSize
			}
		}
	}
}

func newSlide(id string) Slide {
	return Slide{ID: id, Elements: []Element{}, BackgroundColor: defaultSlideBackground}
}

type Point struct {
	X, Y float64
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
