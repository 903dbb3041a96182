package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/vinilo/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Header line plus the "↓ more" footer
	chromeLines = 2

	// loadAheadRows is how close to the last row the cursor gets before
	// NearEnd reports true
	loadAheadRows = 3
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Row is one line of a list
type Row struct {
	ID       int
	Title    string
	Subtitle string
	Right    string // right-aligned annotation
}

// List is a scrollable, filterable list of rows
type List struct {
	title string
	rows  []Row

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	// Loading state
	loading      bool
	end          bool
	spinnerFrame int
	empty        string // message shown when there are no rows

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filteredIdx  []int // indices into rows
	matches      map[int][]int
}

// NewList creates an empty list with the given title
func NewList(title, empty string) *List {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &List{title: title, empty: empty, filterInput: ti, end: true}
}

// SetRows replaces the rows, keeping the cursor on the same id when possible
func (l *List) SetRows(rows []Row, end bool) {
	selected, hadSelection := l.Selected()
	l.rows = rows
	l.end = end

	if l.filterActive {
		l.applyFilter()
	}
	if hadSelection {
		l.SelectID(selected.ID)
	}
	l.clampCursor()
}

// SelectID moves the cursor to the row with id, if visible
func (l *List) SelectID(id int) bool {
	for i := 0; i < l.count(); i++ {
		if l.rows[l.mapIndex(i)].ID == id {
			l.cursor = i
			l.ensureVisible()
			return true
		}
	}
	return false
}

// Selected returns the row under the cursor
func (l *List) Selected() (Row, bool) {
	if l.count() == 0 {
		return Row{}, false
	}
	return l.rows[l.mapIndex(l.cursor)], true
}

// FirstVisibleID returns the id of the top visible row, -1 when empty
func (l *List) FirstVisibleID() int {
	if l.count() == 0 {
		return -1
	}
	return l.rows[l.mapIndex(l.offset)].ID
}

// NearEnd reports whether the cursor is close enough to the last loaded row
// that the next page should be requested.
func (l *List) NearEnd() bool {
	if l.end || l.filterActive {
		return false
	}
	return l.cursor >= len(l.rows)-loadAheadRows
}

func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.maxVisible = max(1, height-BorderHeight-chromeLines)
	l.ensureVisible()
}

func (l *List) SetFocused(focused bool) { l.focused = focused }
func (l *List) SetLoading(loading bool) { l.loading = loading }
func (l *List) IsLoading() bool         { return l.loading }
func (l *List) SetTitle(title string)   { l.title = title }
func (l *List) Len() int                { return len(l.rows) }

// SetSpinnerFrame advances the loading indicator
func (l *List) SetSpinnerFrame(frame int) { l.spinnerFrame = frame }

// IsFilterTyping reports whether keystrokes go to the filter input
func (l *List) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ToggleFilter opens the filter input
func (l *List) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
}

// Update handles navigation and filter keys
func (l *List) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}

	if l.IsFilterTyping() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				l.clearFilter()
				return nil
			case "enter":
				l.filterInput.Blur()
				return nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.clearFilter()
					return nil
				}
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if l.filterActive {
		switch keyMsg.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "/":
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.count()
	if count == 0 {
		return nil
	}
	switch keyMsg.String() {
	case "j", "down":
		if l.cursor < count-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = count - 1
	case "ctrl+d", "pgdown":
		l.cursor = min(count-1, l.cursor+max(1, l.maxVisible/2))
	case "ctrl+u", "pgup":
		l.cursor = max(0, l.cursor-max(1, l.maxVisible/2))
	}
	l.ensureVisible()
	return nil
}

// View renders the list inside a border
func (l *List) View() string {
	innerWidth := max(10, l.width-BorderWidth)

	header := styles.TitleStyle.Render(l.title)
	if l.loading {
		header += " " + styles.AccentStyle.Render(spinnerFrames[l.spinnerFrame%len(spinnerFrames)])
	}
	if n := len(l.rows); n > 0 {
		more := ""
		if !l.end {
			more = "+"
		}
		header += styles.DimStyle.Render(fmt.Sprintf(" (%d%s)", n, more))
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	if l.filterActive {
		b.WriteString(l.filterInput.View())
		b.WriteString("\n")
	}

	count := l.count()
	switch {
	case count == 0 && l.loading:
		b.WriteString(styles.DimStyle.Render("Loading..."))
	case count == 0 && l.filterActive:
		b.WriteString(styles.DimStyle.Render("No matches"))
	case count == 0:
		b.WriteString(styles.DimStyle.Render(l.empty))
	default:
		last := min(count, l.offset+l.maxVisible)
		for i := l.offset; i < last; i++ {
			b.WriteString(l.renderRow(l.mapIndex(i), i == l.cursor, innerWidth))
			if i < last-1 {
				b.WriteString("\n")
			}
		}
		if last < count || !l.end {
			b.WriteString("\n")
			b.WriteString(styles.DimStyle.Render("↓ more"))
		}
	}

	border := styles.InactiveBorder
	if l.focused {
		border = styles.ActiveBorder
	}
	return border.Width(innerWidth).Render(b.String())
}

func (l *List) renderRow(idx int, selected bool, width int) string {
	row := l.rows[idx]
	right := row.Right
	titleWidth := max(1, width-lipgloss.Width(right)-3)

	title := styles.Truncate(row.Title, titleWidth)
	if positions, ok := l.matches[idx]; ok && !selected {
		title = highlight(title, positions)
	}
	line := title
	if row.Subtitle != "" && lipgloss.Width(title)+2 < titleWidth {
		line += styles.DimStyle.Render("  " + styles.Truncate(row.Subtitle, titleWidth-lipgloss.Width(title)-2))
	}
	gap := max(1, width-2-lipgloss.Width(line)-lipgloss.Width(right))
	line += strings.Repeat(" ", gap) + right

	if selected && l.focused {
		return styles.SelectedItemStyle.Width(width).Render(line)
	}
	return styles.NormalItemStyle.Width(width).Render(line)
}

// highlight bolds the runes at the matched byte positions
func highlight(s string, positions []int) string {
	set := make(map[int]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	var b strings.Builder
	for i, r := range s {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (l *List) count() int {
	if l.filterActive && l.filterInput.Value() != "" {
		return len(l.filteredIdx)
	}
	return len(l.rows)
}

func (l *List) mapIndex(i int) int {
	if l.filterActive && l.filterInput.Value() != "" {
		return l.filteredIdx[i]
	}
	return i
}

func (l *List) clampCursor() {
	if n := l.count(); l.cursor >= n {
		l.cursor = max(0, n-1)
	}
	l.ensureVisible()
}

func (l *List) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *List) clearFilter() {
	l.filterActive = false
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.filteredIdx = nil
	l.matches = nil
	l.cursor = 0
	l.offset = 0
}

func (l *List) applyFilter() {
	query := strings.ToLower(l.filterInput.Value())
	if query == "" {
		l.filteredIdx = nil
		l.matches = nil
		return
	}

	titles := make([]string, len(l.rows))
	for i, r := range l.rows {
		titles[i] = strings.ToLower(r.Title)
	}

	found := fuzzy.Find(query, titles)
	l.filteredIdx = make([]int, len(found))
	l.matches = make(map[int][]int, len(found))
	for i, m := range found {
		l.filteredIdx[i] = m.Index
		l.matches[m.Index] = m.MatchedIndexes
	}

	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}
