package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, state AppState) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewModel(ctx, Services{}, state, nil)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m, cmd
}

func TestParseScreen(t *testing.T) {
	assert.Equal(t, ScreenMusicians, ParseScreen("musicians"))
	assert.Equal(t, ScreenCollectors, ParseScreen("collectors"))
	assert.Equal(t, ScreenAlbums, ParseScreen("albums"))
	assert.Equal(t, ScreenAlbums, ParseScreen("bogus"))
}

func TestAppState_PositionDefaultsToTop(t *testing.T) {
	s := NewAppState(domain.RoleVisitor, false, 100, ScreenAlbums)
	assert.Equal(t, domain.TopPosition, s.position(ScreenMusicians))

	s.Positions[ScreenMusicians] = domain.Position{Loaded: 40, AnchorID: 17}
	assert.Equal(t, domain.Position{Loaded: 40, AnchorID: 17}, s.position(ScreenMusicians))
}

func TestModel_StartsAtRoleSelectUntilChosen(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleVisitor, false, 100, ScreenMusicians))
	assert.Equal(t, ScreenRoleSelect, m.State().Screen)

	m, cmd := press(t, m, "down", "enter")
	assert.Equal(t, ScreenAlbums, m.State().Screen)
	assert.Equal(t, domain.RoleCollector, m.State().Role)
	assert.True(t, m.State().RoleChosen)
	assert.NotNil(t, cmd, "entering albums loads the catalog")
}

func TestModel_VisitorCannotOpenCommentForm(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleVisitor, true, 100, ScreenAlbums))
	m.albumID = 100
	m.enter(ScreenAlbumDetail)
	m.album = &domain.Album{ID: 100, Name: "Buscando América"}

	m, _ = press(t, m, "c")
	assert.False(t, m.form.IsVisible())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Only collectors")
}

func TestModel_CollectorOpensCommentForm(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleCollector, true, 100, ScreenAlbums))
	m.albumID = 100
	m.enter(ScreenAlbumDetail)
	m.album = &domain.Album{ID: 100, Name: "Buscando América"}

	m, _ = press(t, m, "c")
	require.True(t, m.form.IsVisible())

	m, _ = press(t, m, "esc")
	assert.False(t, m.form.IsVisible())
}

func TestModel_CommentFailureKeepsFormOpen(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleCollector, true, 100, ScreenAlbums))
	m.albumID = 100
	m.enter(ScreenAlbumDetail)
	m.album = &domain.Album{ID: 100, Name: "Buscando América"}
	m, _ = press(t, m, "c")

	next, _ := m.Update(CommentFailedMsg{Err: &domain.RemoteError{Op: "POST", Message: "down", Cause: domain.ErrServerOffline}})
	m = next.(Model)
	assert.True(t, m.form.IsVisible())
}

func TestModel_StaleDetailMessagesAreIgnored(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleVisitor, true, 100, ScreenAlbums))
	m.detailID = 7
	m.state.Screen = ScreenCollectorDetail

	next, cmd := m.Update(CollectorDetailMsg{
		CollectorID: 8,
		Result:      domain.Failure[*domain.EnrichedCollector](errors.New("boom")),
	})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, domain.StateLoading, m.detail.State())
}

func TestModel_StatusClearsOnlyLatest(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleVisitor, true, 100, ScreenAlbums))

	next, _ := m.Update(StatusMsg{Message: "first"})
	m = next.(Model)
	first := m.statusID
	next, _ = m.Update(StatusMsg{Message: "second"})
	m = next.(Model)

	next, _ = m.Update(ClearStatusMsg{ID: first})
	m = next.(Model)
	assert.Equal(t, "second", m.status)

	next, _ = m.Update(ClearStatusMsg{ID: m.statusID})
	m = next.(Model)
	assert.Empty(t, m.status)
}

func TestModel_AdjacentTabWraps(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleVisitor, true, 100, ScreenAlbums))
	m.state.Screen = ScreenCollectors
	assert.Equal(t, ScreenAlbums, m.adjacentTab(1))
	assert.Equal(t, ScreenMusicians, m.adjacentTab(-1))

	m.state.Screen = ScreenAlbumDetail
	assert.Equal(t, ScreenMusicians, m.adjacentTab(1))
}

func TestCommentError(t *testing.T) {
	err := errors.Join(domain.ErrForbidden)
	assert.Equal(t, "Only collectors can comment", commentError(err))
}

func TestScroll(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	assert.Equal(t, "a\nb", scroll(lines, 0, 2))
	assert.Equal(t, "c\nd", scroll(lines, 2, 2))
	assert.Equal(t, "c\nd", scroll(lines, 9, 2), "offset clamps to the last page")
	assert.Equal(t, "a\nb\nc\nd", scroll(lines, 3, 10))
}

func TestModel_EmptyCommentIsRejectedLocally(t *testing.T) {
	m := newTestModel(t, NewAppState(domain.RoleCollector, true, 100, ScreenAlbums))
	m.albumID = 100
	m.enter(ScreenAlbumDetail)
	m.album = &domain.Album{ID: 100, Name: "Buscando América"}
	m, _ = press(t, m, "c")

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd, "nothing is posted")
	assert.True(t, m.form.IsVisible())
	assert.NotEmpty(t, m.form.View())
}

type fakeOpener struct{ opened []string }

func (f *fakeOpener) Launch(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func TestModel_OpenAlbumCover(t *testing.T) {
	opener := &fakeOpener{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewModel(ctx, Services{Images: opener}, NewAppState(domain.RoleVisitor, true, 100, ScreenAlbums), nil)
	m.albumID = 100
	m.enter(ScreenAlbumDetail)

	m.album = &domain.Album{ID: 100, Name: "Buscando América"}
	m, _ = press(t, m, "o")
	assert.True(t, m.statusErr, "album without cover")

	m.album.Cover = "https://img/cover.jpg"
	m, cmd := press(t, m, "o")
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, StatusMsg{Message: "Opened image"}, msg)
	assert.Equal(t, []string{"https://img/cover.jpg"}, opener.opened)
}
