package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmukas/filmvault/internal/domain"
)

func waitFavoritesPhase(t *testing.T, vm *FavoritesViewModel, phase FavoritesPhase) FavoritesState {
	t.Helper()
	require.Eventually(t, func() bool {
		return vm.Current().Phase == phase
	}, 2*time.Second, 5*time.Millisecond)
	return vm.Current()
}

func TestFavoritesEmptyWhenNothingMarked(t *testing.T) {
	st := memStore(t)
	require.NoError(t, st.UpsertIfAbsent([]domain.Movie{movie(1, "A", "2024-01-15")}, 1))

	vm := NewFavoritesViewModel(NewService(newFakeSource(), st, discard()), st, discard())
	t.Cleanup(vm.Close)

	assert.Equal(t, FavoritesLoading, vm.Current().Phase)
	vm.Start()

	waitFavoritesPhase(t, vm, FavoritesEmpty)
}

func TestFavoritesTracksMarkedMovies(t *testing.T) {
	st := memStore(t)
	require.NoError(t, st.UpsertIfAbsent([]domain.Movie{
		movie(1, "A", "2024-01-15"),
		movie(2, "B", "2024-02-10"),
	}, 1))

	vm := NewFavoritesViewModel(NewService(newFakeSource(), st, discard()), st, discard())
	t.Cleanup(vm.Close)
	vm.Start()
	waitFavoritesPhase(t, vm, FavoritesEmpty)

	require.NoError(t, st.SetFavorite(2, true))

	state := waitFavoritesPhase(t, vm, FavoritesContent)
	require.Len(t, state.Favorites, 1)
	assert.Equal(t, 2, state.Favorites[0].ID)

	require.NoError(t, st.SetFavorite(2, false))
	waitFavoritesPhase(t, vm, FavoritesEmpty)
}

func TestFavoritesToggleFailureRetainsList(t *testing.T) {
	st := memStore(t)
	require.NoError(t, st.UpsertIfAbsent([]domain.Movie{movie(1, "A", "2024-01-15")}, 1))
	require.NoError(t, st.SetFavorite(1, true))

	failing := &failingStore{MovieStore: st}
	vm := NewFavoritesViewModel(NewService(newFakeSource(), failing, discard()), failing, discard())
	t.Cleanup(vm.Close)
	vm.Start()
	waitFavoritesPhase(t, vm, FavoritesContent)

	failing.failFavorites = true
	favorited := movie(1, "A", "2024-01-15")
	favorited.Favorite = true
	vm.ToggleFavorite(favorited)

	state := waitFavoritesPhase(t, vm, FavoritesError)
	assert.Equal(t, "store down", state.Message)
	require.Len(t, state.Favorites, 1, "list must survive a failed toggle")
	assert.Equal(t, 1, state.Favorites[0].ID)
}
