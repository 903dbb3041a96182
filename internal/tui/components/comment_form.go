package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/vinilo/internal/tui/styles"
)

const maxCommentLength = 500

// CommentForm collects a comment description and a 1..5 rating
type CommentForm struct {
	visible bool
	title   string
	input   textinput.Model
	rating  int
	err     string
}

// NewCommentForm creates a hidden comment form
func NewCommentForm() CommentForm {
	ti := textinput.New()
	ti.Placeholder = "What did you think?"
	ti.CharLimit = maxCommentLength
	ti.Width = 44
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return CommentForm{input: ti, rating: 5}
}

// Show displays the form for an album
func (f *CommentForm) Show(albumName string) {
	f.visible = true
	f.title = "Comment on " + albumName
	f.input.SetValue("")
	f.rating = 5
	f.err = ""
	f.input.Focus()
}

// Hide dismisses the form
func (f *CommentForm) Hide() {
	f.visible = false
	f.input.Blur()
}

func (f CommentForm) IsVisible() bool { return f.visible }

// Values returns the entered description and rating
func (f CommentForm) Values() (string, int) {
	return strings.TrimSpace(f.input.Value()), f.rating
}

// SetError shows a validation or post error under the input
func (f *CommentForm) SetError(msg string) { f.err = msg }

// Update handles input events, returns (form, cmd, submitted)
func (f CommentForm) Update(msg tea.Msg) (CommentForm, tea.Cmd, bool) {
	if !f.visible {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return f, nil, true
		case "esc":
			f.Hide()
			return f, nil, false
		case "up", "ctrl+k":
			f.rating = min(5, f.rating+1)
			return f, nil, false
		case "down", "ctrl+j":
			f.rating = max(1, f.rating-1)
			return f, nil, false
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
			f.rating, _ = strconv.Atoi(keyMsg.String()[len("alt+"):])
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd, false
}

// View renders the form as a modal
func (f CommentForm) View() string {
	if !f.visible {
		return ""
	}

	const modalWidth = 48

	line := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)

	rows := []string{
		styles.ModalTitleStyle.Width(modalWidth).Background(styles.SlateDark).Render(styles.Truncate(f.title, modalWidth)),
		line.Render(f.input.View()),
		line.Render(""),
		line.Render("Rating " + styles.Rating(f.rating) + styles.DimStyle.Render("  ↑/↓ to change")),
	}
	if f.err != "" {
		rows = append(rows, line.Render(styles.ErrorStyle.Render(styles.Truncate(f.err, modalWidth))))
	}
	rows = append(rows, line.Render(styles.DimStyle.Render("enter post · esc cancel")))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
