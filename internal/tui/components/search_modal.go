package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/vinilo/internal/search"
	"github.com/mmcdole/vinilo/internal/tui/styles"
)

const maxSearchResults = 10

// SearchModal is the global search over cached musicians and collectors
type SearchModal struct {
	visible     bool
	input       textinput.Model
	index       *search.Index
	results     []search.Result
	suggestions []search.Item
	cursor      int
}

// NewSearchModal creates a hidden search modal over index
func NewSearchModal(index *search.Index) SearchModal {
	ti := textinput.New()
	ti.Placeholder = "musician or collector name"
	ti.Prompt = "› "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.Width = 40

	return SearchModal{input: ti, index: index}
}

func (m *SearchModal) Show() {
	m.visible = true
	m.input.SetValue("")
	m.results = nil
	m.suggestions = nil
	m.cursor = 0
	m.input.Focus()
}

func (m *SearchModal) Hide() {
	m.visible = false
	m.input.Blur()
}

func (m SearchModal) IsVisible() bool { return m.visible }

// Update handles input. It returns the chosen item when enter is pressed.
func (m SearchModal) Update(msg tea.Msg) (SearchModal, tea.Cmd, *search.Item) {
	if !m.visible {
		return m, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.Hide()
			return m, nil, nil
		case "down", "ctrl+n":
			m.cursor = min(m.cursor+1, max(0, m.shown()-1))
			return m, nil, nil
		case "up", "ctrl+p":
			m.cursor = max(0, m.cursor-1)
			return m, nil, nil
		case "enter":
			if item, ok := m.selected(); ok {
				m.Hide()
				return m, nil, &item
			}
			return m, nil, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return m, cmd, nil
}

func (m *SearchModal) refresh() {
	query := m.input.Value()
	m.cursor = 0
	m.results = m.index.Find(query)
	if len(m.results) > maxSearchResults {
		m.results = m.results[:maxSearchResults]
	}
	m.suggestions = nil
	if len(m.results) == 0 && strings.TrimSpace(query) != "" {
		m.suggestions = m.index.Suggest(query, 3)
	}
}

func (m SearchModal) shown() int {
	if len(m.results) > 0 {
		return len(m.results)
	}
	return len(m.suggestions)
}

func (m SearchModal) selected() (search.Item, bool) {
	if m.cursor < len(m.results) {
		return m.results[m.cursor].Item, true
	}
	if len(m.results) == 0 && m.cursor < len(m.suggestions) {
		return m.suggestions[m.cursor], true
	}
	return search.Item{}, false
}

// View renders the modal
func (m SearchModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 52

	lines := []string{
		styles.ModalTitleStyle.Render("Search"),
		m.input.View(),
		"",
	}

	render := func(i int, it search.Item, positions []int) string {
		name := it.Name
		if positions != nil {
			name = highlight(name, positions)
		}
		line := fmt.Sprintf("%-9s %s", it.Kind, name)
		if i == m.cursor {
			return styles.SelectedItemStyle.Width(modalWidth).Render(line)
		}
		return styles.NormalItemStyle.Width(modalWidth).Render(line)
	}

	switch {
	case len(m.results) > 0:
		for i, r := range m.results {
			lines = append(lines, render(i, r.Item, r.MatchedIndexes))
		}
	case len(m.suggestions) > 0:
		lines = append(lines, styles.DimStyle.Render("No matches. Did you mean:"))
		for i, s := range m.suggestions {
			lines = append(lines, render(i, s, nil))
		}
	case strings.TrimSpace(m.input.Value()) != "":
		lines = append(lines, styles.DimStyle.Render("No matches"))
	case m.index.Len() == 0:
		lines = append(lines, styles.DimStyle.Render("Nothing cached yet. Open Musicians or Collectors first."))
	}

	return styles.ModalStyle.Width(modalWidth + 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
