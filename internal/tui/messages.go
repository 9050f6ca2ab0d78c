package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmukas/filmvault/internal/catalog"
)

// Message types for the TUI

// MoviesStateMsg carries a fresh catalog view state.
type MoviesStateMsg struct {
	State catalog.MoviesState
}

// FavoritesStateMsg carries a fresh favorites view state.
type FavoritesStateMsg struct {
	State catalog.FavoritesState
}

// stateStreamClosedMsg signals that a view-model stream ended (teardown).
type stateStreamClosedMsg struct{}

// waitForMoviesState blocks on the catalog state stream and re-arms itself
// from Update after each delivery.
func waitForMoviesState(ch <-chan catalog.MoviesState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return stateStreamClosedMsg{}
		}
		return MoviesStateMsg{State: state}
	}
}

// waitForFavoritesState blocks on the favorites state stream.
func waitForFavoritesState(ch <-chan catalog.FavoritesState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return stateStreamClosedMsg{}
		}
		return FavoritesStateMsg{State: state}
	}
}
