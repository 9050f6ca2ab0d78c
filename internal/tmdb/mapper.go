package tmdb

import (
	"strings"

	"github.com/tmukas/filmvault/internal/domain"
)

const (
	imageBaseURL        = "https://image.tmdb.org/t/p/"
	posterSizeDefault   = "w342"
	backdropSizeDefault = "w780"
)

func mapMovies(dtos []movieDTO) []domain.Movie {
	movies := make([]domain.Movie, 0, len(dtos))
	for _, dto := range dtos {
		movies = append(movies, mapMovie(dto))
	}
	return movies
}

func mapMovie(dto movieDTO) domain.Movie {
	return domain.Movie{
		ID:               dto.ID,
		Title:            dto.Title,
		Overview:         dto.Overview,
		PosterURL:        resolveImageURL(dto.PosterPath, posterSizeDefault),
		BackdropURL:      resolveImageURL(dto.BackdropPath, backdropSizeDefault),
		ReleaseDate:      dto.ReleaseDate,
		VoteAverage:      dto.VoteAverage,
		VoteCount:        dto.VoteCount,
		Popularity:       dto.Popularity,
		GenreIDs:         dto.GenreIDs,
		OriginalLanguage: dto.OriginalLanguage,
		Adult:            dto.Adult,
	}
}

// resolveImageURL turns a TMDB image path into an absolute URL. Paths that
// are already absolute pass through untouched.
func resolveImageURL(path, size string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(path), "http") {
		return path
	}
	return imageBaseURL + size + "/" + strings.TrimPrefix(path, "/")
}
