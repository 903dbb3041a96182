package tui

import (
	"github.com/mmcdole/vinilo/internal/domain"
)

// Screen identifies what the main area shows
type Screen int

const (
	ScreenRoleSelect Screen = iota
	ScreenAlbums
	ScreenAlbumDetail
	ScreenMusicians
	ScreenCollectors
	ScreenCollectorDetail
)

func (s Screen) String() string {
	switch s {
	case ScreenAlbums:
		return "Albums"
	case ScreenAlbumDetail:
		return "Album"
	case ScreenMusicians:
		return "Musicians"
	case ScreenCollectors:
		return "Collectors"
	case ScreenCollectorDetail:
		return "Collector"
	default:
		return "Welcome"
	}
}

// tabs are the top-level screens reachable with tab and 1..3
var tabs = []Screen{ScreenAlbums, ScreenMusicians, ScreenCollectors}

// ParseScreen maps a config value to a top-level screen
func ParseScreen(s string) Screen {
	switch s {
	case "musicians":
		return ScreenMusicians
	case "collectors":
		return ScreenCollectors
	default:
		return ScreenAlbums
	}
}

// AppState is the top-level application state. The role lives here and is
// handed to whatever needs it.
type AppState struct {
	Role        domain.Role
	RoleChosen  bool
	CollectorID int // identity used when the collector role posts comments
	Screen      Screen

	// Positions remembers where each paged list was when it was left
	Positions map[Screen]domain.Position
}

// NewAppState creates the initial state. A role given up front skips the
// role selection screen.
func NewAppState(role domain.Role, chosen bool, collectorID int, start Screen) AppState {
	return AppState{
		Role:        role,
		RoleChosen:  chosen,
		CollectorID: collectorID,
		Screen:      start,
		Positions:   make(map[Screen]domain.Position),
	}
}

func (s AppState) position(screen Screen) domain.Position {
	if pos, ok := s.Positions[screen]; ok {
		return pos
	}
	return domain.TopPosition
}
