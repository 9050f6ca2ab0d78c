package catalog

import (
	"time"

	"github.com/tmukas/filmvault/internal/domain"
)

// unknownGroupLabel is used for blank or unparseable release dates.
const unknownGroupLabel = "Unknown"

// GroupByMonth groups movies by the calendar month of their release date.
//
// The input is assumed pre-sorted descending by release date; the group-by is
// stable, preserving both inter-group and intra-group order. Movies whose
// date does not parse land in an "Unknown" group positioned wherever it first
// occurs in the sequence, not sorted to the end.
func GroupByMonth(movies []domain.Movie) []MovieGroup {
	var groups []MovieGroup
	index := make(map[string]int)

	for _, m := range movies {
		label := monthLabel(m.ReleaseDate)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MovieGroup{Label: label})
		}
		groups[i].Movies = append(groups[i].Movies, m)
	}
	return groups
}

// monthLabel formats a release date as "January 2006". English month names,
// independent of the process locale.
func monthLabel(releaseDate string) string {
	t, err := time.Parse("2006-01-02", releaseDate)
	if err != nil {
		return unknownGroupLabel
	}
	return t.Format("January 2006")
}
