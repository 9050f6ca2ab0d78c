package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmukas/filmvault/internal/catalog"
	"github.com/tmukas/filmvault/internal/domain"
	"github.com/tmukas/filmvault/internal/search"
)

// loadMoreThreshold is how many rows from the bottom trigger the next page.
const loadMoreThreshold = 5

// viewTab identifies the active view.
type viewTab int

const (
	tabCatalog viewTab = iota
	tabFavorites
)

// row is one rendered line of the catalog list: a month header or a movie.
type row struct {
	header bool
	label  string
	movie  domain.Movie
}

// Model is the root Bubble Tea model.
type Model struct {
	moviesVM    *catalog.MoviesViewModel
	favoritesVM *catalog.FavoritesViewModel
	keys        KeyMap

	width  int
	height int

	tab       viewTab
	movies    catalog.MoviesState
	favorites catalog.FavoritesState

	rows         []row
	cursor       int
	scrollOffset int

	filterInput textinput.Model
	filtering   bool
	filterQuery string

	spinner  spinner.Model
	quitting bool
}

// NewModel creates the root model wired to both view models.
func NewModel(moviesVM *catalog.MoviesViewModel, favoritesVM *catalog.FavoritesViewModel) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "/ "
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Amber)

	return Model{
		moviesVM:    moviesVM,
		favoritesVM: favoritesVM,
		keys:        DefaultKeyMap(),
		movies:      moviesVM.Current(),
		favorites:   favoritesVM.Current(),
		filterInput: ti,
		spinner:     sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForMoviesState(m.moviesVM.States()),
		waitForFavoritesState(m.favoritesVM.States()),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case MoviesStateMsg:
		m.movies = msg.State
		m.rebuildRows()
		return m, waitForMoviesState(m.moviesVM.States())

	case FavoritesStateMsg:
		m.favorites = msg.State
		if m.tab == tabFavorites {
			m.rebuildRows()
		}
		return m, waitForFavoritesState(m.favoritesVM.States())

	case stateStreamClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.HalfUp):
		m.moveCursor(-m.visibleRows() / 2)

	case key.Matches(msg, m.keys.HalfDown):
		m.moveCursor(m.visibleRows() / 2)

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.clampScroll()

	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.rows) - 1
		m.clampScroll()

	case key.Matches(msg, m.keys.SwitchView):
		if m.tab == tabCatalog {
			m.tab = tabFavorites
		} else {
			m.tab = tabCatalog
		}
		m.cursor = 0
		m.scrollOffset = 0
		m.rebuildRows()

	case key.Matches(msg, m.keys.Refresh):
		if m.tab == tabCatalog {
			m.moviesVM.Refresh()
		}

	case key.Matches(msg, m.keys.LoadMore):
		if m.tab == tabCatalog {
			m.moviesVM.LoadNextPage()
		}

	case key.Matches(msg, m.keys.Favorite):
		if movie, ok := m.selectedMovie(); ok {
			if m.tab == tabFavorites {
				m.favoritesVM.ToggleFavorite(movie)
			} else {
				m.moviesVM.ToggleFavorite(movie)
			}
		}

	case key.Matches(msg, m.keys.ClearNotice):
		m.moviesVM.ClearError()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue(m.filterQuery)
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Escape):
		if m.filterQuery != "" {
			m.filterQuery = ""
			m.rebuildRows()
		}
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filterQuery = ""
		m.filterInput.Blur()
		m.rebuildRows()
		return m, nil
	}
	if msg.String() == "enter" {
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if q := m.filterInput.Value(); q != m.filterQuery {
		m.filterQuery = q
		m.cursor = 0
		m.scrollOffset = 0
		m.rebuildRows()
	}
	return m, cmd
}

// moveCursor advances the cursor, skipping headers, and fires a load-more
// request when the selection nears the bottom of the loaded catalog.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	m.clampScroll()

	// Skip month headers when landing on one
	if m.rows[m.cursor].header {
		if delta > 0 && m.cursor < len(m.rows)-1 {
			m.cursor++
		} else if m.cursor > 0 {
			m.cursor--
		}
		m.clampScroll()
	}

	if m.tab == tabCatalog && m.filterQuery == "" &&
		m.cursor >= len(m.rows)-loadMoreThreshold {
		m.moviesVM.LoadNextPage()
	}
}

func (m *Model) clampScroll() {
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > len(m.rows)-1 {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	visible := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// visibleRows is the list viewport height: total minus header, banner slot,
// and status bar.
func (m Model) visibleRows() int {
	h := m.height - 4
	if h < 1 {
		return 1
	}
	return h
}

// rebuildRows flattens the active view into render rows, applying the
// title filter when one is set.
func (m *Model) rebuildRows() {
	var rows []row

	if m.filterQuery != "" {
		idx := search.NewIndex(m.activeMovies())
		for _, match := range idx.Filter(m.filterQuery) {
			rows = append(rows, row{movie: match.Movie})
		}
	} else if m.tab == tabFavorites {
		for _, movie := range m.favorites.Favorites {
			rows = append(rows, row{movie: movie})
		}
	} else {
		for _, group := range m.movies.Groups {
			rows = append(rows, row{header: true, label: group.Label})
			for _, movie := range group.Movies {
				rows = append(rows, row{movie: movie})
			}
		}
	}

	m.rows = rows
	m.clampScroll()
	if len(m.rows) > 0 && m.rows[m.cursor].header && m.cursor < len(m.rows)-1 {
		m.cursor++
	}
}

func (m Model) activeMovies() []domain.Movie {
	if m.tab == tabFavorites {
		return m.favorites.Favorites
	}
	return m.movies.Movies()
}

func (m Model) selectedMovie() (domain.Movie, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].header {
		return domain.Movie{}, false
	}
	return m.rows[m.cursor].movie, true
}
