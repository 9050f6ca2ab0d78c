package tui

import (
	"fmt"
	"strings"

	"github.com/tmukas/filmvault/internal/catalog"
	"github.com/tmukas/filmvault/internal/domain"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.bannerView())
	b.WriteString("\n")
	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.statusBarView())
	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("FilmVault")

	var status string
	if m.tab == tabFavorites {
		status = subtitleStyle.Render(fmt.Sprintf("Favorites · %d", len(m.favorites.Favorites)))
	} else {
		switch m.movies.Phase {
		case catalog.PhaseLoading:
			status = m.spinner.View() + subtitleStyle.Render("Loading…")
		case catalog.PhaseRefreshing:
			status = m.spinner.View() + subtitleStyle.Render("Refreshing…")
		case catalog.PhaseLoadingMore:
			status = m.spinner.View() + subtitleStyle.Render("Loading more…")
		default:
			status = subtitleStyle.Render(fmt.Sprintf("%d movies", m.movies.MovieCount()))
		}
	}

	return title + "  " + status
}

// bannerView renders the error line. Stale-but-valid data stays on screen
// below it; the list is never blanked by a transient failure.
func (m Model) bannerView() string {
	if m.tab == tabCatalog {
		if m.movies.Phase == catalog.PhaseError {
			return errorStyle.Render("✗ " + m.movies.Message)
		}
		if m.movies.Message != "" {
			return errorStyle.Render("✗ "+m.movies.Message) + dimStyle.Render("  (x to dismiss)")
		}
	} else if m.favorites.Phase == catalog.FavoritesError {
		return errorStyle.Render("✗ " + m.favorites.Message)
	}
	return ""
}

func (m Model) listView() string {
	if len(m.rows) == 0 {
		return m.emptyView()
	}

	visible := m.visibleRows()
	end := m.scrollOffset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var b strings.Builder
	for i := m.scrollOffset; i < end; i++ {
		r := m.rows[i]
		if r.header {
			b.WriteString(sectionStyle.Render(r.label))
		} else {
			b.WriteString(m.movieLine(r.movie, i == m.cursor))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) movieLine(movie domain.Movie, selected bool) string {
	title := movie.Title
	if title == "" {
		title = fmt.Sprintf("#%d", movie.ID)
	}

	var meta []string
	if r := movie.FormattedRating(); r != "" {
		meta = append(meta, "★ "+r)
	}
	if y := movie.ReleaseYear(); y > 0 {
		meta = append(meta, fmt.Sprintf("%d", y))
	}

	line := title
	if len(meta) > 0 {
		line += dimStyle.Render("  " + strings.Join(meta, " · "))
	}
	if movie.Favorite {
		line = favoriteStyle.Render(favoriteMark) + " " + line
	} else {
		line = "  " + line
	}

	if selected {
		return selectedStyle.Render(cursorMark + title)
	}
	return line
}

func (m Model) emptyView() string {
	if m.tab == tabFavorites {
		switch m.favorites.Phase {
		case catalog.FavoritesLoading:
			return dimStyle.Render("Loading favorites…")
		default:
			return dimStyle.Render("No favorites yet. Press f on a movie to add one.")
		}
	}
	if m.movies.Phase == catalog.PhaseLoading {
		return dimStyle.Render("Fetching the catalog…")
	}
	if m.filterQuery != "" {
		return dimStyle.Render("No matches for \"" + m.filterQuery + "\"")
	}
	return dimStyle.Render("Catalog is empty. Press r to refresh.")
}

func (m Model) statusBarView() string {
	if m.filtering {
		return m.filterInput.View()
	}

	help := "j/k move · f favorite · r refresh · / filter · tab favorites · q quit"
	if m.tab == tabCatalog && m.movies.CanLoadMore {
		help = "m more · " + help
	}
	return statusBarStyle.Render(help)
}
