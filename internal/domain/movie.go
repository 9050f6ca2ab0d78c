package domain

import (
	"fmt"
	"time"
)

// Movie represents a single catalog entry.
type Movie struct {
	ID               int     `json:"id"`                // Remote identifier, sole identity
	Title            string  `json:"title"`             // Display title
	Overview         string  `json:"overview"`          // Plot synopsis
	PosterURL        string  `json:"posterURL"`         // Resolved poster image URL ("" if none)
	BackdropURL      string  `json:"backdropURL"`       // Resolved backdrop image URL ("" if none)
	ReleaseDate      string  `json:"releaseDate"`       // "YYYY-MM-DD", may be blank or malformed
	VoteAverage      float64 `json:"voteAverage"`       // 0-10 community rating
	VoteCount        int     `json:"voteCount"`         // Number of votes
	Popularity       float64 `json:"popularity"`        // Remote popularity score
	GenreIDs         []int   `json:"genreIDs"`          // Ordered genre identifiers
	OriginalLanguage string  `json:"originalLanguage"`  // ISO 639-1 code
	Adult            bool    `json:"adult"`             // Adult content flag
	Favorite         bool    `json:"favorite"`          // Local-only; never present in the remote payload
}

// ReleaseYear returns the release year, or 0 when the date is blank or malformed.
func (m Movie) ReleaseYear() int {
	t, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// FormattedRating returns the vote average as a display string (e.g., "7.4").
func (m Movie) FormattedRating() string {
	if m.VoteCount == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Page is one bounded batch of movies returned by the remote source.
type Page struct {
	Movies     []Movie
	TotalPages int
}

// PageResult is the outcome of one page fetch-and-merge.
type PageResult struct {
	HasMorePages bool
}
