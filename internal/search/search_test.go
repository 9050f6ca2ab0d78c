package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmukas/filmvault/internal/domain"
)

func catalog() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "The Godfather"},
		{ID: 2, Title: "Goodfellas"},
		{ID: 3, Title: "Amélie"},
		{ID: 4, Title: "Heat"},
	}
}

func ids(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Movie.ID
	}
	return out
}

func TestEmptyQueryReturnsEverythingInOrder(t *testing.T) {
	idx := NewIndex(catalog())

	assert.Equal(t, []int{1, 2, 3, 4}, ids(idx.Filter("")))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(idx.Filter("   ")))
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	idx := NewIndex(catalog())

	matches := idx.Filter("GODFATHER")
	require.NotEmpty(t, matches)
	assert.Equal(t, 1, matches[0].Movie.ID)
}

func TestFilterRanksCloserMatchesFirst(t *testing.T) {
	idx := NewIndex(catalog())

	matches := idx.Filter("god")
	require.NotEmpty(t, matches)
	assert.Equal(t, "The Godfather", matches[0].Movie.Title)
	assert.NotEmpty(t, matches[0].MatchedIndexes)
}

func TestFilterFallsBackToNormalizedMatchingForAccents(t *testing.T) {
	idx := NewIndex(catalog())

	matches := idx.Filter("amelie")
	require.NotEmpty(t, matches)
	assert.Equal(t, 3, matches[0].Movie.ID)
}

func TestFilterNoMatches(t *testing.T) {
	idx := NewIndex(catalog())

	assert.Empty(t, idx.Filter("zzzzzz"))
}

func TestFilterEmptyIndex(t *testing.T) {
	idx := NewIndex(nil)

	assert.Empty(t, idx.Filter(""))
	assert.Empty(t, idx.Filter("anything"))
}
