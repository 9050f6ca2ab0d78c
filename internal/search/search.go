// Package search provides the fuzzy title filter behind the TUI filter line.
package search

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/tmukas/filmvault/internal/domain"
)

// Match is one filter hit with highlight metadata.
type Match struct {
	Movie          domain.Movie
	MatchedIndexes []int // rune positions that matched, for highlighting
	Score          int   // higher is better
}

// Index is a filterable view over a movie list. It implements
// sahilm/fuzzy.Source so matching runs without per-query allocations.
type Index struct {
	movies      []domain.Movie
	lowerTitles []string
}

// NewIndex builds a filter index over movies.
func NewIndex(movies []domain.Movie) *Index {
	lower := make([]string, len(movies))
	for i, m := range movies {
		lower[i] = strings.ToLower(m.Title)
	}
	return &Index{movies: movies, lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of indexed movies (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.movies) }

// Filter returns movies matching query, best matches first. An empty query
// matches everything in index order.
func (idx *Index) Filter(query string) []Match {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		all := make([]Match, len(idx.movies))
		for i, m := range idx.movies {
			all[i] = Match{Movie: m}
		}
		return all
	}

	results := sahilm.FindFrom(query, idx)
	if len(results) > 0 {
		matches := make([]Match, len(results))
		for i, r := range results {
			matches[i] = Match{
				Movie:          idx.movies[r.Index],
				MatchedIndexes: r.MatchedIndexes,
				Score:          r.Score,
			}
		}
		return matches
	}

	// Character-sequence matching found nothing; fall back to normalized
	// rank matching, which tolerates accented titles.
	ranks := fuzzy.RankFindNormalizedFold(query, idx.lowerTitles)
	matches := make([]Match, 0, len(ranks))
	for _, r := range ranks {
		matches = append(matches, Match{
			Movie: idx.movies[r.OriginalIndex],
			Score: -r.Distance,
		})
	}
	return matches
}
