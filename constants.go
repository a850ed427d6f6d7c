package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeContextMenu
	ModeConfirm
	ModeFileInput
	ModePublish
)

type InteractionKind int

const (
	Idle InteractionKind = iota
	DraggingElement
	ResizingElement
)

func (k InteractionKind) String() string {
	switch k {
	case DraggingElement:
		return "dragging"
	case ResizingElement:
		return "resizing"
	default:
		return "idle"
	}
}

type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleNE   Handle = "ne"
	HandleSW   Handle = "sw"
	HandleSE   Handle = "se"
	HandleN    Handle = "n"
	HandleS    Handle = "s"
	HandleE    Handle = "e"
	HandleW    Handle = "w"
)

var allHandles = []Handle{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleS, HandleE, HandleW}

func (h Handle) corner() bool {
	return h == HandleNW || h == HandleNE || h == HandleSW || h == HandleSE
}

func (h Handle) west() bool  { return h == HandleNW || h == HandleSW || h == HandleW }
func (h Handle) east() bool  { return h == HandleNE || h == HandleSE || h == HandleE }
func (h Handle) north() bool { return h == HandleNW || h == HandleNE || h == HandleN }
func (h Handle) south() bool { return h == HandleSW || h == HandleSE || h == HandleS }

type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonMiddle
)

type MenuAction string

const (
	MenuCopy      MenuAction = "copy"
	MenuPaste     MenuAction = "paste"
	MenuDuplicate MenuAction = "duplicate"
	MenuDelete    MenuAction = "delete"
	MenuAdd       MenuAction = "add"
)

type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutCopy
	ShortcutPaste
	ShortcutDuplicate
	ShortcutDelete
	ShortcutUndo
	ShortcutRedo
)

type ShortcutScope int

const (
	ScopeText ShortcutScope = iota
	ScopeElement
	ScopeSlide
)

const (
	canvasWidth  = 800.0
	canvasHeight = 600.0

	// live resize floor; elements at rest may be as narrow as minRestWidth
	minElementWidth  = 50.0
	minRestWidth     = 30.0
	minElementHeight = 30.0

	handleHitSize = 10.0

	defaultElementX      = 100.0
	defaultElementY      = 100.0
	defaultElementWidth  = 200.0
	defaultElementHeight = 50.0

	defaultFontSize        = 16.0
	minFontSize            = 1.0
	maxFontSize            = 400.0
	defaultFontFamily      = "Arial"
	defaultTextColor       = "#000000"
	defaultSlideBackground = "#ffffff"

	// corner resizes of text slightly overshoot the width ratio so glyphs
	// keep filling the box after re-wrapping
	fontScaleBoost = 1.009

	pasteOffset = 20.0

	textPadding      = 8.0
	lineHeightFactor = 1.2

	// 800x600 px onto a 10in x 7.5in page
	emuPerPixel = 11430
	slideCX     = 9144000
	slideCY     = 6858000
)
