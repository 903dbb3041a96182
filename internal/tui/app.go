package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/vinilo/internal/catalog"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/search"
	"github.com/mmcdole/vinilo/internal/tui/components"
)

// Services are the catalog operations the screens call
type Services struct {
	Albums         *catalog.Albums
	Comments       *catalog.Comments
	Musicians      *catalog.Synchronizer[*domain.Musician]
	Collectors     *catalog.Synchronizer[*domain.Collector]
	MusicianPages  *catalog.Pager[*domain.Musician]
	CollectorPages *catalog.Pager[*domain.Collector]
	Enricher       *catalog.Enricher
	Search         *search.Index
	Images         ImageOpener
}

// Model is the main Bubble Tea model
type Model struct {
	svc    Services
	logger *slog.Logger
	keys   KeyMap
	help   help.Model
	state  AppState

	width  int
	height int

	// screenCtx is cancelled whenever the screen changes
	ctx          context.Context
	screenCtx    context.Context
	screenCancel context.CancelFunc
	initCmd      tea.Cmd

	roleCursor int

	albumList    *components.List
	albums       []*domain.Album
	albumID      int
	album        *domain.Album
	albumLoading bool
	albumScroll  int

	musicianList   *components.List
	musicianStream *catalog.Stream[*domain.Musician]
	musicians      map[int]*domain.Musician

	collectorList   *components.List
	collectorStream *catalog.Stream[*domain.Collector]

	detailID     int
	detail       domain.Result[*domain.EnrichedCollector]
	detailScroll int
	detailFrom   Screen

	// pendingSelect is the row to select once a list has it loaded
	pendingSelect map[Screen]int

	form   components.CommentForm
	search components.SearchModal

	syncing map[string]bool
	offline map[string]bool

	status       string
	statusErr    bool
	statusID     int
	spinnerFrame int
	showHelp     bool
}

// NewModel creates the application model. ctx bounds every background task.
func NewModel(ctx context.Context, svc Services, state AppState, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if state.Positions == nil {
		state.Positions = make(map[Screen]domain.Position)
	}

	m := Model{
		svc:           svc,
		logger:        logger,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		state:         state,
		ctx:           ctx,
		albumList:     components.NewList("Albums", "No albums in the catalog"),
		musicianList:  components.NewList("Musicians", "No musicians cached yet"),
		collectorList: components.NewList("Collectors", "No collectors cached yet"),
		musicians:     make(map[int]*domain.Musician),
		pendingSelect: make(map[Screen]int),
		form:          components.NewCommentForm(),
		search:        components.NewSearchModal(svc.Search),
		syncing:       make(map[string]bool),
		offline:       make(map[string]bool),
	}

	start := state.Screen
	if !state.RoleChosen {
		start = ScreenRoleSelect
	} else if start == ScreenRoleSelect {
		start = ScreenAlbums
	}
	m.initCmd = m.enter(start)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		TickCmd(),
		m.initCmd,
		RebuildIndexCmd(m.ctx, m.svc.Search, m.svc.Musicians.Table(), m.svc.Collectors.Table()),
	)
}

// State returns the current application state
func (m Model) State() AppState { return m.state }

// Shutdown closes open streams and cancels the current screen
func (m *Model) Shutdown() {
	m.leave()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		return m, nil

	case TickMsg:
		m.spinnerFrame++
		for _, l := range []*components.List{m.albumList, m.musicianList, m.collectorList} {
			l.SetSpinnerFrame(m.spinnerFrame)
		}
		return m, TickCmd()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AlbumsLoadedMsg:
		m.albums = msg.Albums
		m.albumList.SetLoading(false)
		m.albumList.SetRows(albumRows(msg.Albums), true)
		return m, nil

	case AlbumLoadedMsg:
		if m.state.Screen == ScreenAlbumDetail && msg.Album.ID == m.albumID {
			m.album = msg.Album
			m.albumLoading = false
		}
		return m, nil

	case CommentPostedMsg:
		m.form.Hide()
		cmds := []tea.Cmd{m.setStatus("Comment posted", false)}
		if m.state.Screen == ScreenAlbumDetail && msg.AlbumID == m.albumID {
			cmds = append(cmds, LoadAlbumCmd(m.screenCtx, m.svc.Albums, m.albumID))
		}
		return m, tea.Batch(cmds...)

	case CommentFailedMsg:
		m.form.SetError(commentError(msg.Err))
		return m, nil

	case SyncDoneMsg:
		return m.handleSyncDone(msg)

	case MusiciansSnapshotMsg:
		if msg.Stream != m.musicianStream {
			return m, nil
		}
		snap := msg.Snapshot
		for _, mu := range snap.Items {
			m.musicians[mu.ID] = mu
		}
		m.musicianList.SetRows(musicianRows(snap.Items), snap.End)
		m.musicianList.SetLoading(m.syncing[m.svc.Musicians.Table().Name()] && len(snap.Items) == 0)
		m.applyPendingSelect(ScreenMusicians, m.musicianList)
		cmds := []tea.Cmd{WaitMusiciansCmd(msg.Stream)}
		if snap.Err != nil {
			cmds = append(cmds, m.setStatus("Failed to read musicians: "+snap.Err.Error(), true))
		}
		if m.musicianList.NearEnd() {
			cmds = append(cmds, LoadMoreCmd(m.screenCtx, msg.Stream.LoadMore))
		}
		return m, tea.Batch(cmds...)

	case CollectorsSnapshotMsg:
		if msg.Stream != m.collectorStream {
			return m, nil
		}
		snap := msg.Snapshot
		m.collectorList.SetRows(collectorRows(snap.Items), snap.End)
		m.collectorList.SetLoading(m.syncing[m.svc.Collectors.Table().Name()] && len(snap.Items) == 0)
		m.applyPendingSelect(ScreenCollectors, m.collectorList)
		cmds := []tea.Cmd{WaitCollectorsCmd(msg.Stream)}
		if snap.Err != nil {
			cmds = append(cmds, m.setStatus("Failed to read collectors: "+snap.Err.Error(), true))
		}
		if m.collectorList.NearEnd() {
			cmds = append(cmds, LoadMoreCmd(m.screenCtx, msg.Stream.LoadMore))
		}
		return m, tea.Batch(cmds...)

	case CollectorDetailMsg:
		if m.state.Screen != ScreenCollectorDetail || msg.CollectorID != m.detailID {
			return m, nil
		}
		m.detail = msg.Result
		return m, waitDetail(msg.CollectorID, msg.next)

	case SearchIndexedMsg:
		m.logger.Debug("search index ready", "count", msg.Count)
		return m, nil

	case ErrMsg:
		m.albumList.SetLoading(false)
		m.albumLoading = false
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleSyncDone(msg SyncDoneMsg) (tea.Model, tea.Cmd) {
	name := msg.Result.Entity
	if name != "" {
		m.syncing[name] = false
	}
	m.musicianList.SetLoading(false)
	m.collectorList.SetLoading(false)

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m.logger.Error("local cache failure", "error", msg.Err)
		return m, m.setStatus("Local cache error: "+msg.Err.Error(), true)
	}

	var cmds []tea.Cmd
	if msg.Result.RemoteErr != nil {
		m.offline[name] = true
		// A failed background refresh stays quiet; the user asked for this one
		if msg.Forced {
			cmds = append(cmds, m.setStatus("Could not reach the catalog, showing cached "+name, true))
		}
	} else {
		m.offline[name] = false
		if msg.Forced {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Refreshed %d %s", msg.Result.Count, name), false))
		}
	}
	if msg.Result.Refreshed() {
		cmds = append(cmds, RebuildIndexCmd(m.ctx, m.svc.Search, m.svc.Musicians.Table(), m.svc.Collectors.Table()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modals take every key while open
	if m.form.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.form, cmd, submitted = m.form.Update(msg)
		if submitted {
			return m, m.submitComment()
		}
		return m, cmd
	}
	if m.search.IsVisible() {
		var cmd tea.Cmd
		var chosen *search.Item
		m.search, cmd, chosen = m.search.Update(msg)
		if chosen != nil {
			return m, m.openSearchResult(*chosen)
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		m.leave()
		return m, tea.Quit
	}

	if m.state.Screen == ScreenRoleSelect {
		return m.handleRoleSelectKey(msg)
	}

	// A list with an active filter input swallows printable keys
	if l := m.activeList(); l != nil && l.IsFilterTyping() {
		return m, l.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.leave()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.search.Show()
		return m, nil
	case key.Matches(msg, m.keys.SwitchRole):
		return m, m.enter(ScreenRoleSelect)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.enter(m.adjacentTab(1))
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.enter(m.adjacentTab(-1))
	case key.Matches(msg, m.keys.Albums):
		return m, m.enter(ScreenAlbums)
	case key.Matches(msg, m.keys.Musician):
		return m, m.enter(ScreenMusicians)
	case key.Matches(msg, m.keys.Collect):
		return m, m.enter(ScreenCollectors)
	}

	switch m.state.Screen {
	case ScreenAlbums:
		return m.handleAlbumsKey(msg)
	case ScreenAlbumDetail:
		return m.handleAlbumDetailKey(msg)
	case ScreenMusicians:
		return m.handleMusiciansKey(msg)
	case ScreenCollectors:
		return m.handleCollectorsKey(msg)
	case ScreenCollectorDetail:
		return m.handleCollectorDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleRoleSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.leave()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.roleCursor = 0
	case key.Matches(msg, m.keys.Down):
		m.roleCursor = 1
	case key.Matches(msg, m.keys.Enter):
		m.state.Role = domain.RoleVisitor
		if m.roleCursor == 1 {
			m.state.Role = domain.RoleCollector
		}
		m.state.RoleChosen = true
		m.logger.Info("role selected", "role", m.state.Role)
		return m, m.enter(ScreenAlbums)
	}
	return m, nil
}

func (m Model) handleAlbumsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.albumList.ToggleFilter()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.albumList.SetLoading(true)
		return m, LoadAlbumsCmd(m.screenCtx, m.svc.Albums)
	case key.Matches(msg, m.keys.Enter):
		if row, ok := m.albumList.Selected(); ok {
			m.albumID = row.ID
			return m, m.enter(ScreenAlbumDetail)
		}
		return m, nil
	}
	return m, m.albumList.Update(msg)
}

func (m Model) handleAlbumDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.enter(ScreenAlbums)
	case key.Matches(msg, m.keys.Refresh):
		m.albumLoading = true
		return m, LoadAlbumCmd(m.screenCtx, m.svc.Albums, m.albumID)
	case key.Matches(msg, m.keys.Up):
		m.albumScroll = max(0, m.albumScroll-1)
	case key.Matches(msg, m.keys.Down):
		m.albumScroll++
	case key.Matches(msg, m.keys.OpenImage):
		if m.album != nil {
			return m, m.openImage(m.album.Cover)
		}
	case key.Matches(msg, m.keys.Comment):
		if !m.state.Role.CanComment() {
			return m, m.setStatus("Only collectors can comment. Press R to switch role.", true)
		}
		if m.album != nil {
			m.form.Show(m.album.Name)
		}
	}
	return m, nil
}

func (m Model) handleMusiciansKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.musicianList.ToggleFilter()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(m.svc.Musicians, m.musicianList)
	case key.Matches(msg, m.keys.OpenImage):
		if row, ok := m.musicianList.Selected(); ok {
			if mu, found := m.musicians[row.ID]; found {
				return m, m.openImage(mu.Image)
			}
		}
		return m, nil
	}
	cmd := m.musicianList.Update(msg)
	if m.musicianList.NearEnd() && m.musicianStream != nil {
		return m, tea.Batch(cmd, LoadMoreCmd(m.screenCtx, m.musicianStream.LoadMore))
	}
	return m, cmd
}

func (m Model) handleCollectorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.collectorList.ToggleFilter()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(m.svc.Collectors, m.collectorList)
	case key.Matches(msg, m.keys.Enter):
		if row, ok := m.collectorList.Selected(); ok {
			return m, m.openCollector(row.ID)
		}
		return m, nil
	}
	cmd := m.collectorList.Update(msg)
	if m.collectorList.NearEnd() && m.collectorStream != nil {
		return m, tea.Batch(cmd, LoadMoreCmd(m.screenCtx, m.collectorStream.LoadMore))
	}
	return m, cmd
}

func (m Model) handleCollectorDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.enter(m.detailFrom)
	case key.Matches(msg, m.keys.Refresh):
		m.detail = domain.Loading[*domain.EnrichedCollector]()
		return m, CollectorDetailCmd(m.screenCtx, m.svc.Enricher, m.detailID)
	case key.Matches(msg, m.keys.Up):
		m.detailScroll = max(0, m.detailScroll-1)
	case key.Matches(msg, m.keys.Down):
		m.detailScroll++
	}
	return m, nil
}

// enter switches screens. The previous screen's work is cancelled and its
// list position remembered.
func (m *Model) enter(screen Screen) tea.Cmd {
	m.leave()
	m.screenCtx, m.screenCancel = context.WithCancel(m.ctx)
	m.state.Screen = screen
	m.updateFocus()

	switch screen {
	case ScreenAlbums:
		m.albumList.SetLoading(true)
		return LoadAlbumsCmd(m.screenCtx, m.svc.Albums)

	case ScreenAlbumDetail:
		m.album = nil
		m.albumLoading = true
		m.albumScroll = 0
		return LoadAlbumCmd(m.screenCtx, m.svc.Albums, m.albumID)

	case ScreenMusicians:
		pos := m.state.position(screen)
		if _, pending := m.pendingSelect[screen]; !pending && pos.AnchorID >= 0 {
			m.pendingSelect[screen] = pos.AnchorID
		}
		m.musicianStream = m.svc.MusicianPages.Open(m.screenCtx, pos)
		name := m.svc.Musicians.Table().Name()
		m.syncing[name] = true
		m.musicianList.SetLoading(true)
		return tea.Batch(
			WaitMusiciansCmd(m.musicianStream),
			SyncCmd(m.screenCtx, m.svc.Musicians, false),
		)

	case ScreenCollectors:
		pos := m.state.position(screen)
		if _, pending := m.pendingSelect[screen]; !pending && pos.AnchorID >= 0 {
			m.pendingSelect[screen] = pos.AnchorID
		}
		m.collectorStream = m.svc.CollectorPages.Open(m.screenCtx, pos)
		name := m.svc.Collectors.Table().Name()
		m.syncing[name] = true
		m.collectorList.SetLoading(true)
		return tea.Batch(
			WaitCollectorsCmd(m.collectorStream),
			SyncCmd(m.screenCtx, m.svc.Collectors, false),
		)

	case ScreenCollectorDetail:
		m.detail = domain.Loading[*domain.EnrichedCollector]()
		m.detailScroll = 0
		return CollectorDetailCmd(m.screenCtx, m.svc.Enricher, m.detailID)
	}
	return nil
}

// leave cancels the current screen's work and closes its streams
func (m *Model) leave() {
	if m.musicianStream != nil {
		m.musicianStream.SetAnchor(m.musicianList.FirstVisibleID())
		m.state.Positions[ScreenMusicians] = m.musicianStream.Position()
		m.musicianStream.Close()
		m.musicianStream = nil
	}
	if m.collectorStream != nil {
		m.collectorStream.SetAnchor(m.collectorList.FirstVisibleID())
		m.state.Positions[ScreenCollectors] = m.collectorStream.Position()
		m.collectorStream.Close()
		m.collectorStream = nil
	}
	if m.screenCancel != nil {
		m.screenCancel()
		m.screenCancel = nil
	}
}

func (m *Model) refresh(sync Refresher, list *components.List) tea.Cmd {
	list.SetLoading(true)
	return SyncCmd(m.screenCtx, sync, true)
}

func (m *Model) openCollector(id int) tea.Cmd {
	m.detailID = id
	m.detailFrom = ScreenCollectors
	if m.state.Screen != ScreenCollectorDetail && m.state.Screen != ScreenRoleSelect {
		m.detailFrom = m.state.Screen
		if m.detailFrom == ScreenAlbumDetail {
			m.detailFrom = ScreenAlbums
		}
	}
	return m.enter(ScreenCollectorDetail)
}

func (m *Model) openSearchResult(item search.Item) tea.Cmd {
	switch item.Kind {
	case search.KindCollector:
		return m.openCollector(item.ID)
	default:
		m.pendingSelect[ScreenMusicians] = item.ID
		return m.enter(ScreenMusicians)
	}
}

func (m *Model) openImage(url string) tea.Cmd {
	if m.svc.Images == nil || strings.TrimSpace(url) == "" {
		return m.setStatus("No image to open", true)
	}
	return OpenImageCmd(m.svc.Images, url)
}

func (m *Model) applyPendingSelect(screen Screen, list *components.List) {
	id, ok := m.pendingSelect[screen]
	if !ok {
		return
	}
	if list.SelectID(id) {
		delete(m.pendingSelect, screen)
	}
}

func (m *Model) submitComment() tea.Cmd {
	description, rating := m.form.Values()
	c := domain.NewComment{
		Description: description,
		Rating:      rating,
		CollectorID: m.state.CollectorID,
	}
	if err := catalog.ValidateComment(c); err != nil {
		m.form.SetError(commentError(err))
		return nil
	}
	m.form.SetError("Posting...")
	return PostCommentCmd(m.screenCtx, m.svc.Comments, m.state.Role, m.albumID, c)
}

func commentError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidComment):
		return strings.TrimPrefix(err.Error(), domain.ErrInvalidComment.Error()+": ")
	case errors.Is(err, domain.ErrForbidden):
		return "Only collectors can comment"
	default:
		return err.Error()
	}
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = msg
	m.statusErr = isErr
	return ClearStatusCmd(m.statusID)
}

func (m *Model) activeList() *components.List {
	switch m.state.Screen {
	case ScreenAlbums:
		return m.albumList
	case ScreenMusicians:
		return m.musicianList
	case ScreenCollectors:
		return m.collectorList
	}
	return nil
}

func (m *Model) updateFocus() {
	active := m.activeList()
	for _, l := range []*components.List{m.albumList, m.musicianList, m.collectorList} {
		l.SetFocused(l == active)
	}
}

func (m Model) adjacentTab(step int) Screen {
	current := 0
	for i, s := range tabs {
		if s == m.state.Screen || (s == ScreenAlbums && m.state.Screen == ScreenAlbumDetail) ||
			(s == ScreenCollectors && m.state.Screen == ScreenCollectorDetail) {
			current = i
		}
	}
	return tabs[(current+step+len(tabs))%len(tabs)]
}

func albumRows(albums []*domain.Album) []components.Row {
	rows := make([]components.Row, len(albums))
	for i, a := range albums {
		right := ""
		if y := a.Year(); y > 0 {
			right = fmt.Sprint(y)
		}
		rows[i] = components.Row{ID: a.ID, Title: a.Name, Subtitle: a.Genre, Right: right}
	}
	return rows
}

func musicianRows(ms []*domain.Musician) []components.Row {
	rows := make([]components.Row, len(ms))
	for i, mu := range ms {
		rows[i] = components.Row{ID: mu.ID, Title: mu.Name, Right: mu.FormattedBirthDate()}
	}
	return rows
}

func collectorRows(cs []*domain.Collector) []components.Row {
	rows := make([]components.Row, len(cs))
	for i, c := range cs {
		rows[i] = components.Row{ID: c.ID, Title: c.Name, Subtitle: c.Email, Right: fmt.Sprintf("%d albums", c.AlbumCount)}
	}
	return rows
}
