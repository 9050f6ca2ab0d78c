package catalog

import "github.com/tmukas/filmvault/internal/domain"

// Phase identifies the current view-state variant.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseContent
	PhaseRefreshing
	PhaseLoadingMore
	PhaseError
)

// String returns a human-readable representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "Loading"
	case PhaseContent:
		return "Content"
	case PhaseRefreshing:
		return "Refreshing"
	case PhaseLoadingMore:
		return "LoadingMore"
	case PhaseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// MovieGroup is one month section of the catalog view.
type MovieGroup struct {
	Label  string // "January 2024", or "Unknown" for unparseable dates
	Movies []domain.Movie
}

// MoviesState is the single UI-facing snapshot of the catalog view. It is
// replaced atomically on every transition, never partially mutated.
//
// Message is the error text when Phase is PhaseError, or a transient notice
// kept on Content until dismissed via ClearError.
type MoviesState struct {
	Phase          Phase
	Groups         []MovieGroup
	NextPageToLoad int
	CanLoadMore    bool
	Message        string
}

// HasMovies reports whether any group contains at least one movie.
func (s MoviesState) HasMovies() bool {
	for _, g := range s.Groups {
		if len(g.Movies) > 0 {
			return true
		}
	}
	return false
}

// MovieCount returns the total number of movies across all groups.
func (s MoviesState) MovieCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Movies)
	}
	return n
}

// Movies flattens the grouped view back into one ordered list.
func (s MoviesState) Movies() []domain.Movie {
	movies := make([]domain.Movie, 0, s.MovieCount())
	for _, g := range s.Groups {
		movies = append(movies, g.Movies...)
	}
	return movies
}

// FavoritesPhase identifies the favorites view variant.
type FavoritesPhase int

const (
	FavoritesLoading FavoritesPhase = iota
	FavoritesEmpty
	FavoritesContent
	FavoritesError
)

// FavoritesState is the favorites view snapshot.
type FavoritesState struct {
	Phase     FavoritesPhase
	Favorites []domain.Movie
	Message   string // set when Phase is FavoritesError
}
