package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	filmstripStyle = lipgloss.NewStyle().Width(filmstripWidth)
	slideRowStyle  = lipgloss.NewStyle().Width(filmstripWidth)
	currentSlide   = lipgloss.NewStyle().Width(filmstripWidth).Reverse(true)
	dropTarget     = lipgloss.NewStyle().Width(filmstripWidth).Underline(true).Foreground(lipgloss.Color("#4a90d9"))
	menuItemStyle  = lipgloss.NewStyle().Width(filmstripWidth).Foreground(lipgloss.Color("#dddddd")).Background(lipgloss.Color("#333333"))
	menuFocus      = menuItemStyle.Copy().Reverse(true)
	menuDisabled   = menuItemStyle.Copy().Foreground(lipgloss.Color("#777777"))
	toolbarStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a90d9"))
	toolbarOn      = lipgloss.NewStyle().Reverse(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd75f"))
)

// filmstripTop is the row of the first slide entry, under the header.
const filmstripTop = 1

// viewport maps terminal cells onto the 800x600 canvas.
type viewport struct {
	left, top  int
	cols, rows int
}

func (m model) viewport() viewport {
	cols := m.width - filmstripWidth
	rows := m.height - 2
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return viewport{left: filmstripWidth, top: 0, cols: cols, rows: rows}
}

func (v viewport) cellSize() (float64, float64) {
	return canvasWidth / float64(v.cols), canvasHeight / float64(v.rows)
}

func (v viewport) contains(x, y int) bool {
	return x >= v.left && x < v.left+v.cols && y >= v.top && y < v.top+v.rows
}

// toCanvas returns the canvas point at the centre of cell (x, y). Cells
// outside the viewport map past the canvas edge, which is what a release
// outside the canvas needs.
func (v viewport) toCanvas(x, y int) Point {
	cw, ch := v.cellSize()
	return Point{
		X: (float64(x-v.left) + 0.5) * cw,
		Y: (float64(y-v.top) + 0.5) * ch,
	}
}

// handleCell is the canvas cell a resize handle of r is drawn in.
func (v viewport) handleCell(r Rect, h Handle) (int, int) {
	_, _, c1, r1 := v.toCell(r)
	cw, ch := v.cellSize()
	p := handlePoint(r, h)
	return int(math.Min(p.X/cw, float64(c1))), int(math.Min(p.Y/ch, float64(r1)))
}

func (v viewport) toCell(r Rect) (c0, r0, c1, r1 int) {
	cw, ch := v.cellSize()
	c0 = int(math.Floor(r.X / cw))
	r0 = int(math.Floor(r.Y / ch))
	c1 = int(math.Ceil(r.Right()/cw)) - 1
	r1 = int(math.Ceil(r.Bottom()/ch)) - 1
	if c1 <= c0 {
		c1 = c0 + 1
	}
	if r1 <= r0 {
		r1 = r0 + 1
	}
	return
}

// filmstripOffset keeps the current slide visible when the deck is taller
// than the filmstrip.
func (m model) filmstripOffset() int {
	visible := m.height - 2 - filmstripTop
	if visible < 1 {
		visible = 1
	}
	if cur := m.editor.CurrentIndex(); cur >= visible {
		return cur - visible + 1
	}
	return 0
}

func (m model) filmstripSlideAt(x, y int) (int, bool) {
	if x < 0 || x >= filmstripWidth || y < filmstripTop {
		return 0, false
	}
	i := y - filmstripTop + m.filmstripOffset()
	if i >= m.editor.SlideCount() || y >= m.height-2 {
		return 0, false
	}
	return i, true
}

func (m model) menuTop() int {
	return filmstripTop + m.editor.SlideCount() - m.filmstripOffset() + 1
}

func (m model) menuItemAt(y int) (MenuAction, bool) {
	menu := m.editor.Menu()
	if menu == nil {
		return "", false
	}
	i := y - m.menuTop()
	if i < 0 || i >= len(menu.Items) {
		return "", false
	}
	return menu.Items[i].Action, true
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.filmstripView(), m.canvasView())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.toolbarView(), m.statusView())
}

func (m model) filmstripView() string {
	e := m.editor
	rows := m.height - 2
	lines := []string{slideRowStyle.Bold(true).Render(" Slides")}
	drop := e.DropTarget()
	for i := m.filmstripOffset(); i < e.SlideCount() && len(lines) < rows; i++ {
		s := e.doc.Slides[i]
		label := fmt.Sprintf(" %2d  %d el", i+1, len(s.Elements))
		switch {
		case i == drop:
			lines = append(lines, dropTarget.Render(label))
		case i == e.CurrentIndex():
			lines = append(lines, currentSlide.Render(label))
		default:
			lines = append(lines, slideRowStyle.Render(label))
		}
	}
	if menu := e.Menu(); menu != nil {
		lines = append(lines, "")
		for i, item := range menu.Items {
			style := menuItemStyle
			switch {
			case !item.Enabled:
				style = menuDisabled
			case i == m.menuCursor:
				style = menuFocus
			}
			lines = append(lines, style.Render(" "+item.Label))
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return filmstripStyle.Render(strings.Join(lines[:rows], "\n"))
}

func (m model) canvasView() string {
	e := m.editor
	vp := m.viewport()
	grid := make([][]rune, vp.rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", vp.cols))
	}
	set := func(c, r int, ch rune) {
		if r >= 0 && r < vp.rows && c >= 0 && c < vp.cols {
			grid[r][c] = ch
		}
	}

	slide := e.CurrentSlide()
	for _, el := range slide.Elements {
		r, _ := e.RenderGeometry(el)
		c0, r0, c1, r1 := vp.toCell(r)
		selected := el.ID == e.SelectedID()
		h, v, corner := '─', '│', [4]rune{'┌', '┐', '└', '┘'}
		if selected {
			h, v, corner = '#', '#', [4]rune{'#', '#', '#', '#'}
		}
		for c := c0 + 1; c < c1; c++ {
			set(c, r0, h)
			set(c, r1, h)
		}
		for rr := r0 + 1; rr < r1; rr++ {
			set(c0, rr, v)
			set(c1, rr, v)
			for c := c0 + 1; c < c1; c++ {
				set(c, rr, ' ')
			}
		}
		set(c0, r0, corner[0])
		set(c1, r0, corner[1])
		set(c0, r1, corner[2])
		set(c1, r1, corner[3])

		label := elementLabel(el)
		inner := c1 - c0 - 1
		lines := strings.Split(label, "\n")
		for i, line := range lines {
			row := r0 + 1 + i
			if row >= r1 || inner <= 0 {
				break
			}
			runes := []rune(line)
			if len(runes) > inner {
				runes = runes[:inner]
			}
			start := c0 + 1
			switch el.Style.TextAlign {
			case "center":
				start += (inner - len(runes)) / 2
			case "right":
				start += inner - len(runes)
			}
			for j, ch := range runes {
				set(start+j, row, ch)
			}
		}
		if el.IsEditing {
			set(c0+1+min(len([]rune(lines[len(lines)-1])), inner-1), r0+len(lines), '▏')
		}
		if selected && !el.IsEditing {
			for _, hd := range allHandles {
				c, rr := vp.handleCell(r, hd)
				set(c, rr, '■')
			}
		}
	}

	out := make([]string, len(grid))
	for i, row := range grid {
		out[i] = string(row)
	}
	style := lipgloss.NewStyle().Width(vp.cols)
	if c, ok, err := ParseColor(slide.BackgroundColor); err == nil && ok {
		style = style.Background(lipgloss.Color(c.Hex()))
		if l, _, _ := c.Lab(); l > 0.5 {
			style = style.Foreground(lipgloss.Color("#000000"))
		} else {
			style = style.Foreground(lipgloss.Color("#ffffff"))
		}
	}
	return style.Render(strings.Join(out, "\n"))
}

func elementLabel(el Element) string {
	switch el.Type {
	case ElementText:
		return el.Content
	case ElementImage:
		if strings.HasPrefix(el.Content, "data:") {
			return "[image]"
		}
		return "[image: empty]"
	default:
		return "[" + string(el.Type) + "]"
	}
}

func (m model) toolbarView() string {
	switch m.mode {
	case ModeFileInput:
		return toolbarStyle.Render(m.prompt.label) + m.prompt.value + "▏"
	case ModePublish:
		parts := make([]string, len(publishFields))
		for i, name := range publishFields {
			field := name + ": " + m.form.values[i]
			if i == m.form.focus {
				field = toolbarOn.Render(field + "▏")
			}
			parts[i] = field
		}
		return toolbarStyle.Render("Publish ") + strings.Join(parts, "  ") + statusStyle.Render("  tab: next  enter: upload  esc: cancel")
	case ModeConfirm:
		return errorStyle.Render(fmt.Sprintf("Delete slide %d? (y/n)", m.editor.CurrentIndex()+1))
	}

	tb := m.editor.Toolbar()
	if !tb.Visible {
		return ""
	}
	flag := func(on bool, s string) string {
		if on {
			return toolbarOn.Render(s)
		}
		return s
	}
	st := tb.Style
	return strings.Join([]string{
		toolbarStyle.Render("Text"),
		flag(st.Bold(), "B"),
		flag(st.Italic(), "I"),
		flag(st.Underline(), "U"),
		flag(st.TextAlign == "left", "L"),
		flag(st.TextAlign == "center", "C"),
		flag(st.TextAlign == "right", "R"),
		fmt.Sprintf("%gpx %s", st.FontSize, st.FontFamily),
		st.Color,
		"bg " + st.BackgroundColor,
	}, " ")
}

func (m model) statusView() string {
	e := m.editor
	status := fmt.Sprintf("Mode: %s | Slide %d/%d", m.modeString(), e.CurrentIndex()+1, e.SlideCount())
	if sel := e.Selected(); sel != nil {
		r, font := e.RenderGeometry(*sel)
		status += fmt.Sprintf(" | %s %.0f,%.0f %.0fx%.0f", sel.Type, r.X, r.Y, r.Width, r.Height)
		if sel.Type == ElementText {
			status += fmt.Sprintf(" %gpx", font)
		}
	}
	if it := e.Interaction(); it.Active() {
		status += " | " + it.Kind.String()
	}
	if e.Busy() {
		status += " | busy"
	}
	if m.filename != "" {
		status += " | " + m.filename
	}
	status = statusStyle.Render(status)
	switch {
	case m.errorMessage != "":
		status += " " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " " + successStyle.Render(m.successMessage)
	default:
		status += statusStyle.Render(" | ? for help | ctrl+q to quit")
	}
	return status
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeEditing:
		return "EDIT"
	case ModeContextMenu:
		return "MENU"
	case ModeConfirm:
		return "CONFIRM"
	case ModeFileInput:
		return "INPUT"
	case ModePublish:
		return "PUBLISH"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"slidedeck help",
	"==============",
	"",
	"Mouse:",
	"  click            Select an element, click again on text to edit it",
	"  drag             Move the element, or resize it from a ■ handle",
	"  filmstrip drag   Reorder slides",
	"  right click      Slide menu (copy, paste, duplicate, delete, add)",
	"                   Slides are only deleted from this menu",
	"",
	"Elements:",
	"  t s b g          Add text, shape, table, graphic",
	"  i                Add an image from a file",
	"  enter            Edit the selected text",
	"  esc              Finish editing / clear selection",
	"  delete           Delete the selected element",
	"",
	"Text style:",
	"  B I U            Bold, italic, underline",
	"  L C R            Align left, centre, right",
	"  + -              Font size",
	"  :                Set any style, e.g. color=#ff0000 or bg=#202020",
	"",
	"Slides:",
	"  n                New slide after the current one",
	"  [ ] pgup pgdn    Previous / next slide",
	"  K J              Move slide up / down",
	"  m                Slide menu",
	"",
	"Clipboard and history:",
	"  ctrl+c ctrl+v    Copy / paste (element when selected, slide otherwise)",
	"  ctrl+d           Duplicate",
	"  ctrl+z ctrl+y    Undo / redo (ctrl+shift+z also redoes)",
	"",
	"Files:",
	"  ctrl+s           Save deck",
	"  ctrl+e           Export .pptx",
	"  ctrl+p           Publish",
	"  ctrl+q           Quit",
}

func (m model) helpView() string {
	lines := helpLines
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}
