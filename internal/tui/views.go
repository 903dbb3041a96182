package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/tui/components"
	"github.com/mmcdole/vinilo/internal/tui/styles"
)

// Layout constants
const (
	// ChromeHeight is the header plus footer
	ChromeHeight = 2

	// ListColumnPercent is the list share of the width when a side panel shows
	ListColumnPercent = 55
	MinColumnWidth    = 24
)

// updateLayout sizes the lists for the current window
func (m *Model) updateLayout() {
	contentHeight := max(1, m.height-ChromeHeight)
	listWidth := m.width
	if m.width >= 2*MinColumnWidth {
		listWidth = max(MinColumnWidth, m.width*ListColumnPercent/100)
	}
	m.albumList.SetSize(m.width, contentHeight)
	m.musicianList.SetSize(listWidth, contentHeight)
	m.collectorList.SetSize(m.width, contentHeight)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.state.Screen {
	case ScreenRoleSelect:
		content = m.renderRoleSelect()
	case ScreenAlbums:
		content = m.albumList.View()
	case ScreenAlbumDetail:
		content = m.renderAlbumDetail()
	case ScreenMusicians:
		content = m.renderMusicians()
	case ScreenCollectors:
		content = m.collectorList.View()
	case ScreenCollectorDetail:
		content = m.renderCollectorDetail()
	}

	contentHeight := max(1, m.height-ChromeHeight)
	content = lipgloss.NewStyle().Width(m.width).Height(contentHeight).MaxHeight(contentHeight).Render(content)

	// Modals replace the content area, centered
	switch {
	case m.form.IsVisible():
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, m.form.View())
	case m.search.IsVisible():
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, m.search.View())
	case m.showHelp:
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.ModalStyle.Render(m.help.View(m.keys)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderFooter())
}

func (m Model) renderHeader() string {
	var parts []string
	for i, s := range tabs {
		label := fmt.Sprintf("%d %s", i+1, s)
		active := s == m.state.Screen ||
			(s == ScreenAlbums && m.state.Screen == ScreenAlbumDetail) ||
			(s == ScreenCollectors && m.state.Screen == ScreenCollectorDetail)
		if active {
			parts = append(parts, styles.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, styles.InactiveTabStyle.Render(label))
		}
	}
	left := styles.TitleStyle.Render("vinilo ") + strings.Join(parts, " ")

	var right []string
	if m.isOffline() {
		right = append(right, styles.OfflineStyle.Render("offline"))
	}
	if m.state.RoleChosen {
		right = append(right, styles.RoleBadgeStyle.Render(m.state.Role.String()))
	}
	rightStr := strings.Join(right, " ")

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	return left + strings.Repeat(" ", gap) + rightStr
}

// isOffline reports whether the table behind the current screen last failed to refresh
func (m Model) isOffline() bool {
	switch m.state.Screen {
	case ScreenMusicians:
		return m.offline[m.svc.Musicians.Table().Name()]
	case ScreenCollectors, ScreenCollectorDetail:
		return m.offline[m.svc.Collectors.Table().Name()]
	}
	return false
}

func (m Model) renderFooter() string {
	if m.status != "" {
		style := styles.SuccessStyle
		if m.statusErr {
			style = styles.ErrorStyle
		}
		return styles.StatusBarStyle.Width(m.width).Render(style.Render(styles.Truncate(m.status, m.width-2)))
	}
	h := m.help
	h.ShowAll = false
	return styles.StatusBarStyle.Width(m.width).Render(h.View(m.keys))
}

func (m Model) renderRoleSelect() string {
	options := []struct {
		role domain.Role
		hint string
	}{
		{domain.RoleVisitor, "Browse albums, musicians and collectors"},
		{domain.RoleCollector, "Everything a visitor can do, plus comment on albums"},
	}

	lines := []string{styles.ModalTitleStyle.Render("Who is using Vinilo?"), ""}
	for i, o := range options {
		label := fmt.Sprintf("%-10s %s", o.role, styles.DimStyle.Render(o.hint))
		if i == m.roleCursor {
			lines = append(lines, styles.SelectedItemStyle.Render("▸ "+label))
		} else {
			lines = append(lines, styles.NormalItemStyle.Render("  "+label))
		}
	}
	lines = append(lines, "", styles.DimStyle.Render("↑/↓ choose · enter confirm · q quit"))

	box := styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, max(1, m.height-ChromeHeight), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderAlbumDetail() string {
	if m.album == nil {
		if m.albumLoading {
			return styles.DimStyle.Render("Loading album...")
		}
		return styles.DimStyle.Render("Album unavailable. Press r to retry.")
	}
	a := m.album
	width := max(MinColumnWidth, m.width-4)

	var lines []string
	title := a.Name
	if y := a.Year(); y > 0 {
		title = fmt.Sprintf("%s (%d)", a.Name, y)
	}
	lines = append(lines, styles.TitleStyle.Render(styles.Truncate(title, width)))

	var meta []string
	for _, s := range []string{a.Genre, a.RecordLabel} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if len(a.Performers) > 0 {
		names := make([]string, len(a.Performers))
		for i, p := range a.Performers {
			names[i] = p.Name
		}
		meta = append(meta, strings.Join(names, ", "))
	}
	if len(meta) > 0 {
		lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))
	}
	if a.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(a.Description))
	}

	lines = append(lines, "", styles.AccentStyle.Render(fmt.Sprintf("Tracks (%d)", len(a.Tracks))))
	for i, t := range a.Tracks {
		lines = append(lines, fmt.Sprintf("%2d. %s %s", i+1, styles.Truncate(t.Name, width-12), styles.DimStyle.Render(t.Duration)))
	}

	header := fmt.Sprintf("Comments (%d)", len(a.Comments))
	if len(a.Comments) > 0 {
		header += fmt.Sprintf("  avg %.1f", a.AverageRating())
	}
	lines = append(lines, "", styles.AccentStyle.Render(header))
	for _, c := range a.Comments {
		lines = append(lines, styles.Rating(c.Rating)+" "+styles.Truncate(c.Description, width-8))
	}
	if m.state.Role.CanComment() {
		lines = append(lines, "", styles.DimStyle.Render("c add a comment"))
	}

	return scroll(lines, m.albumScroll, max(1, m.height-ChromeHeight))
}

func (m Model) renderMusicians() string {
	list := m.musicianList.View()
	if m.width < 2*MinColumnWidth {
		return list
	}

	panelWidth := max(MinColumnWidth, m.width-lipgloss.Width(list))
	row, ok := m.musicianList.Selected()
	var lines []string
	if mu, found := m.musicians[row.ID]; ok && found {
		lines = append(lines, styles.TitleStyle.Render(styles.Truncate(mu.Name, panelWidth-4)))
		if d := mu.FormattedBirthDate(); d != "" {
			lines = append(lines, styles.SubtitleStyle.Render("Born "+d))
		}
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%d albums", mu.AlbumCount)))
		if mu.Description != "" {
			lines = append(lines, "", lipgloss.NewStyle().Width(panelWidth-4).Render(mu.Description))
		}
		if mu.Image != "" {
			lines = append(lines, "", styles.DimStyle.Render(styles.Truncate(mu.Image, panelWidth-4)))
		}
	}

	panel := styles.InactiveBorder.
		Width(panelWidth - components.BorderWidth).
		Height(max(1, m.height-ChromeHeight-components.BorderHeight)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.JoinHorizontal(lipgloss.Top, list, panel)
}

func (m Model) renderCollectorDetail() string {
	width := max(MinColumnWidth, m.width-4)
	height := max(1, m.height-ChromeHeight)

	var out string
	m.detail.Match(
		func() {
			out = styles.DimStyle.Render("Loading collector...")
		},
		func(c *domain.EnrichedCollector) {
			out = scroll(collectorLines(c, width), m.detailScroll, height)
		},
		func(err error) {
			msg := "Could not load collector: " + err.Error()
			if domain.IsRemote(err) {
				msg = "Collector unavailable while offline. Press r to retry."
			}
			out = styles.ErrorStyle.Render(styles.Truncate(msg, width))
		},
	)
	return out
}

func collectorLines(c *domain.EnrichedCollector, width int) []string {
	lines := []string{styles.TitleStyle.Render(styles.Truncate(c.Name, width))}

	var contact []string
	for _, s := range []string{c.Email, c.Telephone} {
		if s != "" {
			contact = append(contact, s)
		}
	}
	if len(contact) > 0 {
		lines = append(lines, styles.SubtitleStyle.Render(strings.Join(contact, " · ")))
	}

	lines = append(lines, "", styles.AccentStyle.Render(fmt.Sprintf("Albums (%d)  spent $%d", len(c.Albums), c.TotalSpent())))
	for _, a := range c.Albums {
		name := styles.Truncate(a.Name, width-24)
		if a.IsPlaceholder() {
			name = styles.DimStyle.Render(name)
		}
		status := styles.SuccessStyle.Render(a.Status)
		if a.Status != "Active" {
			status = styles.DimStyle.Render(a.Status)
		}
		lines = append(lines, fmt.Sprintf("  %s  $%d  %s", name, a.Price, status))
	}

	lines = append(lines, "", styles.AccentStyle.Render(fmt.Sprintf("Favorite performers (%d)", len(c.FavoritePerformers))))
	for _, p := range c.FavoritePerformers {
		line := "  " + p.Name
		if p.Image != "" {
			line += "  " + styles.DimStyle.Render(styles.Truncate(p.Image, width-len(p.Name)-6))
		}
		lines = append(lines, line)
	}
	return lines
}

// scroll returns at most height lines starting at offset
func scroll(lines []string, offset, height int) string {
	offset = min(offset, max(0, len(lines)-height))
	end := min(len(lines), offset+height)
	return strings.Join(lines[offset:end], "\n")
}
