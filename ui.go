package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const filmstripWidth = 18

type promptKind int

const (
	promptSave promptKind = iota
	promptExport
	promptImage
	promptStyle
)

type prompt struct {
	kind  promptKind
	label string
	value string
}

var publishFields = []string{"Title", "Topic", "Price", "Grade", "Published (y/n)"}

type publishForm struct {
	values []string
	focus  int
}

type model struct {
	width  int
	height int

	editor   *Editor
	config   *Config
	log      *logrus.Entry
	uploader *Uploader
	exporter Exporter

	mode       Mode
	help       bool
	filename   string
	meta       SlideMetadata
	prompt     prompt
	form       publishForm
	menuCursor int

	// where the canvas gesture in progress was pressed
	press *pressAt

	errorMessage   string
	successMessage string
}

type pressAt struct {
	x, y  int
	point Point
}

type saveDoneMsg struct {
	path string
	err  error
}

type exportDoneMsg struct {
	path string
	size int
	err  error
}

type uploadDoneMsg struct {
	result *UploadResult
	err    error
}

func newModel(editor *Editor, cfg *Config, log *logrus.Entry, filename string, meta SlideMetadata) model {
	return model{
		editor:   editor,
		config:   cfg,
		log:      log,
		uploader: NewUploader(cfg, log.WithField("component", "uploader")),
		exporter: PPTXExporter{},
		mode:     ModeNormal,
		filename: filename,
		meta:     meta,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case saveDoneMsg:
		m.editor.SetBusy(false)
		if msg.err != nil {
			m.fail(msg.err, "save failed")
			return m, nil
		}
		m.filename = msg.path
		m.succeed("Saved " + msg.path)
		return m, nil

	case exportDoneMsg:
		m.editor.SetBusy(false)
		if msg.err != nil {
			m.fail(msg.err, "export failed")
			return m, nil
		}
		m.succeed(fmt.Sprintf("Exported %s (%s)", msg.path, humanize.Bytes(uint64(msg.size))))
		return m, nil

	case uploadDoneMsg:
		m.editor.SetBusy(false)
		if msg.err != nil {
			var verr *ValidationError
			if errors.As(msg.err, &verr) {
				m.mode = ModePublish
			}
			m.fail(msg.err, "publish failed")
			return m, nil
		}
		m.form = publishForm{}
		m.succeed(fmt.Sprintf("Published %s (%s)", msg.result.FileName, humanize.Bytes(uint64(msg.result.Size))))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			m.help = false
			return m, nil
		}
		switch m.mode {
		case ModeEditing:
			return m.handleEditingKey(msg)
		case ModeContextMenu:
			return m.handleMenuKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		case ModeFileInput:
			return m.handlePromptKey(msg)
		case ModePublish:
			return m.handlePublishKey(msg)
		}
		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m *model) succeed(s string) {
	m.errorMessage = ""
	m.successMessage = s
}

func (m *model) fail(err error, what string) {
	m.successMessage = ""
	m.errorMessage = err.Error()
	m.log.WithError(err).Warn(what)
}

// report shows err unless it is nil; returns true when it was shown.
func (m *model) report(err error) bool {
	if err == nil {
		return false
	}
	m.successMessage = ""
	m.errorMessage = err.Error()
	return true
}

// syncMode follows the editor into or out of text editing.
func (m *model) syncMode() {
	editing := m.editor.EditingElement() != nil
	switch {
	case editing && m.mode == ModeNormal:
		m.mode = ModeEditing
	case !editing && m.mode == ModeEditing:
		m.mode = ModeNormal
	}
	if m.mode == ModeContextMenu && m.editor.Menu() == nil {
		m.mode = ModeNormal
	}
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	e := m.editor
	switch msg.String() {
	case "ctrl+q":
		return m, tea.Quit
	case "?":
		m.help = true
	case "ctrl+c", "ctrl+v", "ctrl+d", "ctrl+z", "ctrl+y", "ctrl+shift+z", "delete", "backspace":
		m.report(e.HandleShortcut(ShortcutForKey(msg.String())))
	case "esc":
		e.ClearSelection()
	case "t":
		_, err := e.AddElement(ElementText)
		m.report(err)
	case "s":
		_, err := e.AddElement(ElementShape)
		m.report(err)
	case "b":
		_, err := e.AddElement(ElementTable)
		m.report(err)
	case "g":
		_, err := e.AddElement(ElementGraphic)
		m.report(err)
	case "i":
		m.openPrompt(promptImage, "Image file: ", "")
	case "n":
		m.report(e.AddSlide())
	case "pgup", "[":
		m.report(e.SelectSlide(e.CurrentIndex() - 1))
	case "pgdown", "]":
		m.report(e.SelectSlide(e.CurrentIndex() + 1))
	case "K":
		if i := e.CurrentIndex(); i > 0 {
			m.report(e.MoveSlide(i, i-1))
		}
	case "J":
		if i := e.CurrentIndex(); i < e.SlideCount()-1 {
			m.report(e.MoveSlide(i, i+1))
		}
	case "m":
		if _, err := e.OpenContextMenu(e.CurrentIndex()); !m.report(err) {
			m.mode = ModeContextMenu
			m.menuCursor = 0
		}
	case "enter":
		m.report(e.StartEdit())
	case "B":
		m.report(e.ToggleBold())
	case "I":
		m.report(e.ToggleItalic())
	case "U":
		m.report(e.ToggleUnderline())
	case "+", "=":
		m.report(m.bumpFontSize(2))
	case "-":
		m.report(m.bumpFontSize(-2))
	case "L":
		m.report(e.SetTextAlign("left"))
	case "C":
		m.report(e.SetTextAlign("center"))
	case "R":
		m.report(e.SetTextAlign("right"))
	case ":":
		m.openPrompt(promptStyle, "Style (property=value, bg=colour): ", "")
	case "ctrl+s":
		if m.filename == "" {
			m.openPrompt(promptSave, "Save as: ", "deck.json")
			return m, nil
		}
		return m.startSave(m.filename)
	case "ctrl+e":
		m.openPrompt(promptExport, "Export to: ", ExportFileName(m.meta.Title, time.Now()))
	case "ctrl+p":
		m.openPublishForm()
	}
	m.syncMode()
	return m, nil
}

func (m *model) bumpFontSize(delta float64) error {
	sel := m.editor.Selected()
	if sel == nil || sel.Type != ElementText {
		return ErrNoSelection
	}
	return m.editor.UpdateStyle(PropFontSize, strconv.FormatFloat(sel.Style.FontSize+delta, 'f', -1, 64))
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y", "enter":
		m.report(m.editor.DeleteSlide(m.editor.CurrentIndex()))
	}
	return m, nil
}

func (m model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	el := e.EditingElement()
	if el == nil {
		m.mode = ModeNormal
		return m, nil
	}
	text := el.Content
	switch msg.Type {
	case tea.KeyEsc:
		m.report(e.EndEdit())
	case tea.KeyEnter:
		m.report(e.EditText(text + "\n"))
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			m.report(e.EditText(string(r[:len(r)-1])))
		}
	case tea.KeySpace:
		m.report(e.EditText(text + " "))
	case tea.KeyRunes:
		m.report(e.EditText(text + string(msg.Runes)))
	default:
		// shortcuts resolve to the text scope while editing
		switch msg.String() {
		case "ctrl+c", "ctrl+v", "ctrl+d", "ctrl+z", "ctrl+y", "ctrl+shift+z":
		case "ctrl+q":
			m.report(e.EndEdit())
			return m, tea.Quit
		}
	}
	m.syncMode()
	return m, nil
}

func (m model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := m.editor.Menu()
	if menu == nil {
		m.mode = ModeNormal
		return m, nil
	}
	switch msg.String() {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(menu.Items)-1 {
			m.menuCursor++
		}
	case "enter":
		m.runMenuItem(menu.Items[m.menuCursor].Action)
	case "esc", "q":
		m.editor.CloseContextMenu()
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *model) runMenuItem(a MenuAction) {
	m.mode = ModeNormal
	if a == MenuDelete && m.editor.SlideCount() > 1 && m.config != nil && m.config.Confirmations {
		// the menu opened on this slide, so the confirmation deletes the current one
		m.editor.CloseContextMenu()
		m.mode = ModeConfirm
		return
	}
	if err := m.editor.RunMenuAction(a); !m.report(err) {
		m.succeed("Slide " + string(a) + " done")
	}
}

func (m *model) openPrompt(kind promptKind, label, value string) {
	m.prompt = prompt{kind: kind, label: label, value: value}
	m.mode = ModeFileInput
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.prompt.value); len(r) > 0 {
			m.prompt.value = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.prompt.value += " "
		return m, nil
	case tea.KeyRunes:
		m.prompt.value += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	m.mode = ModeNormal
	value := strings.TrimSpace(m.prompt.value)
	if value == "" {
		return m, nil
	}
	switch m.prompt.kind {
	case promptSave:
		return m.startSave(m.config.GetSavePath(value))
	case promptExport:
		return m.startExport(m.config.GetSavePath(value))
	case promptImage:
		m.report(m.insertImageFile(value))
	case promptStyle:
		m.report(m.applyStyleCommand(value))
	}
	return m, nil
}

func (m *model) insertImageFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read image")
	}
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return errors.Errorf("%s is not an image (%s)", path, mediaType)
	}
	_, err = m.editor.AddImage(encodeDataURL(mediaType, data))
	return err
}

// applyStyleCommand handles "property=value". "bg" sets the slide
// background instead of the element's.
func (m *model) applyStyleCommand(cmd string) error {
	name, value, ok := strings.Cut(cmd, "=")
	if !ok {
		return errors.Errorf("expected property=value, got %q", cmd)
	}
	name = strings.TrimSpace(name)
	if name == "bg" {
		return m.editor.SetSlideBackground(value)
	}
	p, err := ParseStyleProperty(name)
	if err != nil {
		return err
	}
	return m.editor.UpdateStyle(p, value)
}

func (m *model) openPublishForm() {
	if m.form.values == nil {
		m.form = publishForm{values: []string{
			m.meta.Title,
			m.meta.Topic,
			strconv.FormatFloat(m.meta.Price, 'f', -1, 64),
			strconv.Itoa(m.meta.Grade),
			map[bool]string{true: "y", false: "n"}[m.meta.IsPublished],
		}}
	}
	m.mode = ModePublish
}

// metadata parses the form. Unparseable numbers become -1 and 0 so the
// validator reports them against the right field.
func (f publishForm) metadata() SlideMetadata {
	price, err := strconv.ParseFloat(strings.TrimSpace(f.values[2]), 64)
	if err != nil {
		price = -1
	}
	grade, err := strconv.Atoi(strings.TrimSpace(f.values[3]))
	if err != nil {
		grade = 0
	}
	published := strings.HasPrefix(strings.ToLower(strings.TrimSpace(f.values[4])), "y")
	return SlideMetadata{
		Title:       strings.TrimSpace(f.values[0]),
		Topic:       strings.TrimSpace(f.values[1]),
		Price:       price,
		Grade:       grade,
		IsPublished: published,
	}
}

func (m model) handlePublishKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.values)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.values) - 1) % len(f.values)
	case tea.KeyBackspace:
		if r := []rune(f.values[f.focus]); len(r) > 0 {
			f.values[f.focus] = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		f.values[f.focus] += " "
	case tea.KeyRunes:
		f.values[f.focus] += string(msg.Runes)
	case tea.KeyEnter:
		meta := f.metadata()
		if err := meta.Validate(); err != nil {
			m.fail(err, "publish rejected")
			return m, nil
		}
		m.meta = meta
		m.mode = ModeNormal
		return m.startUpload(meta)
	}
	return m, nil
}

func (m model) startSave(path string) (tea.Model, tea.Cmd) {
	e := m.editor
	e.endEdit()
	snap, meta := e.Snapshot(), m.meta
	e.SetBusy(true)
	m.syncMode()
	m.succeed("Saving...")
	return m, func() tea.Msg {
		return saveDoneMsg{path: path, err: SaveDeck(path, meta, snap)}
	}
}

func (m model) startExport(path string) (tea.Model, tea.Cmd) {
	e := m.editor
	e.endEdit()
	snap := e.Snapshot()
	e.SetBusy(true)
	m.syncMode()
	m.succeed("Exporting...")
	exporter := m.exporter
	log := m.log
	return m, func() tea.Msg {
		data, err := exporter.Export(context.Background(), snap)
		if err == nil {
			err = errors.Wrap(os.WriteFile(path, data, 0644), "write export")
		}
		if err == nil {
			log.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Info("deck exported")
		}
		return exportDoneMsg{path: path, size: len(data), err: err}
	}
}

func (m model) startUpload(meta SlideMetadata) (tea.Model, tea.Cmd) {
	e := m.editor
	e.endEdit()
	snap := e.Snapshot()
	e.SetBusy(true)
	m.syncMode()
	m.succeed("Publishing...")
	uploader := m.uploader
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := uploader.Upload(ctx, meta, snap)
		return uploadDoneMsg{result: res, err: err}
	}
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	vp := m.viewport()
	switch m.mode {
	case ModeFileInput, ModePublish, ModeConfirm:
		return m, nil
	}

	switch msg.Type {
	case tea.MouseRelease:
		// releases are global: wherever the pointer ends up, the gesture ends
		if e.DraggingSlide() {
			target := -1
			if i, ok := m.filmstripSlideAt(msg.X, msg.Y); ok {
				target = i
			}
			if target < 0 {
				e.CancelSlideDrag()
			} else {
				m.report(e.EndSlideDrag(target))
			}
			return m, nil
		}
		e.PointerUp(m.pointerAt(vp, msg.X, msg.Y))
		m.press = nil
		m.syncMode()
		return m, nil

	case tea.MouseMotion:
		m.pointerMotion(msg, vp)
		return m, nil

	case tea.MouseLeft:
		// with cell motion a held button can arrive as repeated presses
		if e.Interaction().Active() || e.DraggingSlide() {
			m.pointerMotion(msg, vp)
			return m, nil
		}
		if msg.X < filmstripWidth {
			return m.filmstripClick(msg)
		}
		if m.mode == ModeContextMenu {
			e.CloseContextMenu()
			m.mode = ModeNormal
		}
		if vp.contains(msg.X, msg.Y) {
			p := m.pressPoint(vp, msg.X, msg.Y)
			m.press = &pressAt{x: msg.X, y: msg.Y, point: p}
			m.report(e.PointerDown(p, ButtonPrimary))
			m.syncMode()
		}
		return m, nil

	case tea.MouseRight:
		if i, ok := m.filmstripSlideAt(msg.X, msg.Y); ok {
			if _, err := e.OpenContextMenu(i); !m.report(err) {
				m.mode = ModeContextMenu
				m.menuCursor = 0
			}
		}
		return m, nil

	case tea.MouseWheelUp:
		if msg.X < filmstripWidth {
			m.report(e.SelectSlide(e.CurrentIndex() - 1))
		}
	case tea.MouseWheelDown:
		if msg.X < filmstripWidth {
			m.report(e.SelectSlide(e.CurrentIndex() + 1))
		}
	}
	return m, nil
}

// pressPoint is the canvas point for a press on cell (x, y). A cell is
// much larger than a handle's hit box, so a press on a cell showing a
// handle lands on the handle itself.
func (m model) pressPoint(vp viewport, x, y int) Point {
	sel := m.editor.Selected()
	if sel == nil || sel.IsEditing {
		return vp.toCanvas(x, y)
	}
	r := sel.Rect()
	for _, h := range allHandles {
		if c, row := vp.handleCell(r, h); vp.left+c == x && vp.top+row == y {
			return handlePoint(r, h)
		}
	}
	return vp.toCanvas(x, y)
}

func (m *model) pointerMotion(msg tea.MouseMsg, vp viewport) {
	e := m.editor
	if e.DraggingSlide() {
		if i, ok := m.filmstripSlideAt(msg.X, msg.Y); ok {
			e.HoverSlide(i)
		}
		return
	}
	e.PointerMove(m.pointerAt(vp, msg.X, msg.Y))
}

// pointerAt follows the pointer in whole cells from where it was pressed.
func (m model) pointerAt(vp viewport, x, y int) Point {
	if m.press == nil {
		return vp.toCanvas(x, y)
	}
	cw, ch := vp.cellSize()
	return Point{
		X: m.press.point.X + float64(x-m.press.x)*cw,
		Y: m.press.point.Y + float64(y-m.press.y)*ch,
	}
}

func (m model) filmstripClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	if m.mode == ModeContextMenu {
		if a, ok := m.menuItemAt(msg.Y); ok {
			m.runMenuItem(a)
			return m, nil
		}
		e.CloseContextMenu()
		m.mode = ModeNormal
	}
	i, ok := m.filmstripSlideAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	if m.report(e.SelectSlide(i)) {
		return m, nil
	}
	e.BeginSlideDrag(i, ButtonPrimary)
	m.syncMode()
	return m, nil
}
