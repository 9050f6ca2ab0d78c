package catalog

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmukas/filmvault/internal/domain"
	"github.com/tmukas/filmvault/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestVM(t *testing.T, src *fakeSource, st *store.MovieStore) *MoviesViewModel {
	t.Helper()
	svc := NewService(src, st, discard())
	vm := NewMoviesViewModel(svc, st, discard())
	t.Cleanup(vm.Close)
	return vm
}

func waitPhase(t *testing.T, vm *MoviesViewModel, phase Phase) MoviesState {
	t.Helper()
	require.Eventually(t, func() bool {
		return vm.Current().Phase == phase
	}, 2*time.Second, 5*time.Millisecond, "expected phase %s, last seen %s", phase, vm.Current().Phase)
	return vm.Current()
}

// waitCond waits for an arbitrary predicate over the current state.
func waitCond(t *testing.T, vm *MoviesViewModel, cond func(MoviesState) bool) MoviesState {
	t.Helper()
	require.Eventually(t, func() bool {
		return cond(vm.Current())
	}, 2*time.Second, 5*time.Millisecond)
	return vm.Current()
}

func TestInitialLoadBecomesContentWithMonthGroup(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	vm := newTestVM(t, src, memStore(t))

	assert.Equal(t, PhaseLoading, vm.Current().Phase)
	vm.Start()

	state := waitCond(t, vm, func(s MoviesState) bool {
		return s.Phase == PhaseContent && s.HasMovies()
	})
	require.Len(t, state.Groups, 1)
	assert.Equal(t, "January 2024", state.Groups[0].Label)
	require.Len(t, state.Groups[0].Movies, 1)
	assert.Equal(t, 1, state.Groups[0].Movies[0].ID)
	assert.Equal(t, 2, state.NextPageToLoad)
	assert.True(t, state.CanLoadMore)
}

func TestLoadNextPageAdvancesCursor(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 3,
	}
	src.pages[2] = domain.Page{
		Movies:     []domain.Movie{movie(2, "B", "2023-12-01")},
		TotalPages: 3,
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	vm.LoadNextPage()

	state := waitCond(t, vm, func(s MoviesState) bool {
		return s.Phase == PhaseContent && s.NextPageToLoad == 3
	})
	assert.Equal(t, 2, state.MovieCount())
	assert.Len(t, state.Groups, 2)
	assert.True(t, state.CanLoadMore)

	src.mu.Lock()
	calls := append([]int(nil), src.calls...)
	src.mu.Unlock()
	assert.Equal(t, []int{1, 2}, calls)
}

func TestLastPageDisablesLoadMore(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 1,
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()

	state := waitCond(t, vm, func(s MoviesState) bool {
		return s.Phase == PhaseContent && s.HasMovies() && !s.CanLoadMore
	})
	assert.Equal(t, 2, state.NextPageToLoad)

	vm.LoadNextPage()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, src.callCount(), "load-more past the last page must not fetch")
}

func TestLoadNextPageNoopWhileRefreshing(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	release := make(chan struct{})
	src.mu.Lock()
	src.release = release
	src.mu.Unlock()

	vm.Refresh()
	waitPhase(t, vm, PhaseRefreshing)

	before := src.callCount()
	vm.LoadNextPage()
	vm.LoadNextPage()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, src.callCount(), "load-more during refresh must not fetch")

	src.mu.Lock()
	src.release = nil
	src.mu.Unlock()
	close(release)

	state := waitPhase(t, vm, PhaseContent)
	assert.Equal(t, 2, state.NextPageToLoad)
	assert.True(t, state.CanLoadMore)
}

func TestLoadNextPageNoopWhileLoadingMore(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	release := make(chan struct{})
	src.mu.Lock()
	src.release = release
	src.pages[2] = domain.Page{TotalPages: 10}
	src.mu.Unlock()

	vm.LoadNextPage()
	waitPhase(t, vm, PhaseLoadingMore)

	before := src.callCount()
	vm.LoadNextPage()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, src.callCount(), "concurrent load-more must not fetch")

	src.mu.Lock()
	src.release = nil
	src.mu.Unlock()
	close(release)
	waitPhase(t, vm, PhaseContent)
}

func TestLoadMoreFailureRetainsItemsAndBlocksFurtherLoads(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	src.setError(domain.ErrNetworkUnavailable)
	vm.LoadNextPage()

	state := waitPhase(t, vm, PhaseError)
	assert.Equal(t, "No internet connection", state.Message)
	assert.Equal(t, 1, state.MovieCount(), "cached items must stay visible")
	assert.Equal(t, 2, state.NextPageToLoad, "cursor must be retained")

	before := src.callCount()
	vm.LoadNextPage()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, src.callCount(), "failed fetch must latch further loads")
}

func TestRefreshFailureRetainsItemsAndCursor(t *testing.T) {
	src := newFakeSource()
	var page1 []domain.Movie
	for id := 1; id <= 5; id++ {
		page1 = append(page1, movie(id, "M", "2024-01-15"))
	}
	src.pages[1] = domain.Page{Movies: page1, TotalPages: 10}

	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.MovieCount() == 5 })

	src.setError(domain.ErrNetworkUnavailable)
	vm.Refresh()

	state := waitPhase(t, vm, PhaseError)
	assert.Equal(t, "No internet connection", state.Message)
	assert.Equal(t, 5, state.MovieCount(), "the 5 cached items must be retained")
	assert.Equal(t, 2, state.NextPageToLoad, "cursor is not reset on a failed refresh")
}

func TestRefreshSuccessResetsCursor(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 1, // exhausted after the first page
	}
	vm := newTestVM(t, src, memStore(t))
	vm.Start()

	waitCond(t, vm, func(s MoviesState) bool {
		return s.Phase == PhaseContent && s.HasMovies() && !s.CanLoadMore
	})

	vm.Refresh()
	state := waitCond(t, vm, func(s MoviesState) bool {
		return s.Phase == PhaseContent && s.CanLoadMore
	})
	assert.Equal(t, 2, state.NextPageToLoad)
}

func TestErrorClearsOnNextStoreEmission(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	st := memStore(t)
	vm := newTestVM(t, src, st)
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	src.setError(domain.ErrTimeout)
	vm.LoadNextPage()
	waitPhase(t, vm, PhaseError)

	// A store mutation lands; the error must clear automatically and the
	// stale message must not carry over.
	require.NoError(t, st.SetFavorite(1, true))

	state := waitPhase(t, vm, PhaseContent)
	assert.Empty(t, state.Message)
	assert.True(t, state.Groups[0].Movies[0].Favorite)
}

func TestFirstPageGuardAdvancesCursorWithoutFetch(t *testing.T) {
	src := newFakeSource()
	vm := newTestVM(t, src, memStore(t))

	// A cursor of 1 with data already present can occur after an error
	// recovery; load-more must only realign the cursor.
	vm.mu.Lock()
	vm.state = MoviesState{
		Phase:          PhaseContent,
		Groups:         GroupByMonth([]domain.Movie{movie(1, "A", "2024-01-15")}),
		NextPageToLoad: 1,
		CanLoadMore:    true,
	}
	vm.mu.Unlock()

	vm.LoadNextPage()

	state := vm.Current()
	assert.Equal(t, PhaseContent, state.Phase)
	assert.Equal(t, 2, state.NextPageToLoad)
	assert.Zero(t, src.callCount(), "the guard must not trigger a fetch")
}

func TestToggleFavoriteFailureMovesToErrorWithRetainedItems(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = domain.Page{
		Movies:     []domain.Movie{movie(1, "A", "2024-01-15")},
		TotalPages: 10,
	}
	st := memStore(t)
	failing := &failingStore{MovieStore: st}
	svc := NewService(src, failing, discard())
	vm := NewMoviesViewModel(svc, failing, discard())
	t.Cleanup(vm.Close)
	vm.Start()
	waitCond(t, vm, func(s MoviesState) bool { return s.Phase == PhaseContent && s.HasMovies() })

	failing.failFavorites = true
	vm.ToggleFavorite(movie(1, "A", "2024-01-15"))

	state := waitPhase(t, vm, PhaseError)
	assert.Equal(t, "store down", state.Message)
	assert.Equal(t, 1, state.MovieCount(), "cached list must survive a toggle failure")
	assert.Equal(t, 2, state.NextPageToLoad)
}

func TestTeardownCancelsInFlightFetchWithoutError(t *testing.T) {
	src := newFakeSource()
	release := make(chan struct{})
	src.release = release
	defer close(release)

	vm := newTestVM(t, src, memStore(t))
	vm.Start()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	vm.Close()

	assert.Equal(t, PhaseLoading, vm.Current().Phase, "cancellation must not surface as Error")

	// The state stream must be closed after teardown.
	_, open := <-drainStates(vm.States())
	assert.False(t, open)
}

// drainStates consumes buffered states so the closed-channel read is reliable.
func drainStates(ch <-chan MoviesState) <-chan MoviesState {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				closed := make(chan MoviesState)
				close(closed)
				return closed
			}
		default:
			return ch
		}
	}
}

// failingStore wraps a real store and can be switched to fail favorite writes.
type failingStore struct {
	domain.MovieStore
	failFavorites bool
}

func (f *failingStore) SetFavorite(id int, favorite bool) error {
	if f.failFavorites {
		return errStoreDown
	}
	return f.MovieStore.SetFavorite(id, favorite)
}
