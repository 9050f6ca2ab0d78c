package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tmukas/filmvault/internal/domain"
)

// MoviesViewModel is the reactive container driving the catalog view.
//
// It folds three concurrent inputs into a single MoviesState: the store's
// reactive stream, completions of in-flight fetches, and user actions. Every
// read-modify-write of the state runs under one mutex, so transitions are
// serialized and store emissions fold into whatever state is current at
// delivery time.
type MoviesViewModel struct {
	svc    *Service
	store  domain.MovieStore
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       MoviesState
	lastResult  *domain.PageResult // outcome of the most recent merged page
	loadBlocked bool               // set after a failed fetch, cleared on success
	closed      bool
	unsubscribe func()

	out chan MoviesState
}

// NewMoviesViewModel creates the catalog view model. Call Start to attach it.
func NewMoviesViewModel(svc *Service, store domain.MovieStore, logger *slog.Logger) *MoviesViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MoviesViewModel{
		svc:    svc,
		store:  store,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		state:  MoviesState{Phase: PhaseLoading, NextPageToLoad: 1, CanLoadMore: true},
		out:    make(chan MoviesState, 1),
	}
}

// Start subscribes to the store and requests the first page. The page-1
// request is issued before emissions are consumed so the initial mount is in
// Loading when a cached snapshot replays from disk.
func (vm *MoviesViewModel) Start() {
	ch, cancel := vm.store.Subscribe()

	vm.mu.Lock()
	vm.unsubscribe = cancel
	vm.mu.Unlock()

	vm.LoadNextPage()

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		for movies := range ch {
			vm.onStoreEmission(movies)
		}
	}()
}

// States returns the observable view-state stream. The channel coalesces:
// consumers always receive the latest state, never a stale backlog.
func (vm *MoviesViewModel) States() <-chan MoviesState {
	return vm.out
}

// Current returns the state as of now.
func (vm *MoviesViewModel) Current() MoviesState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Close tears the view model down: in-flight fetches are cancelled, the store
// subscription is detached, and no further transitions occur. Cancellation
// never surfaces as an Error state.
func (vm *MoviesViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	unsubscribe := vm.unsubscribe
	vm.mu.Unlock()

	vm.cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	vm.wg.Wait()
	close(vm.out)
}

// onStoreEmission folds a fresh store snapshot into the current state.
// Emissions only carry data: they update the displayed groups and clear a
// standing error once data arrives. Phase and cursor transitions are driven
// by the fetch completions, so delivery order cannot skew the cursor.
func (vm *MoviesViewModel) onStoreEmission(movies []domain.Movie) {
	groups := GroupByMonth(movies)
	hasData := len(movies) > 0

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	switch vm.state.Phase {
	case PhaseLoading:
		if hasData {
			// Cached data replayed from disk while the first fetch is still
			// in flight. Show it; the fetch outcome refines CanLoadMore.
			vm.state = MoviesState{
				Phase:          PhaseContent,
				Groups:         groups,
				NextPageToLoad: 2,
				CanLoadMore:    vm.hasMoreOrDefault(),
			}
		} else {
			vm.state.Groups = groups
		}

	case PhaseContent, PhaseRefreshing, PhaseLoadingMore:
		vm.state.Groups = groups

	case PhaseError:
		if hasData {
			// Cached data arrived; clear the error automatically. The
			// message is dropped rather than carried onto Content so the
			// UI does not re-raise a stale toast.
			vm.state = MoviesState{
				Phase:          PhaseContent,
				Groups:         groups,
				NextPageToLoad: vm.state.NextPageToLoad,
				CanLoadMore:    vm.state.CanLoadMore,
			}
		} else {
			vm.state.Groups = groups
		}
	}

	vm.publishLocked()
}

// hasMoreOrDefault reads the latest page outcome, defaulting to true when no
// page has been merged yet. Callers must hold mu.
func (vm *MoviesViewModel) hasMoreOrDefault() bool {
	if vm.lastResult == nil {
		return true
	}
	return vm.lastResult.HasMorePages
}

// LoadNextPage requests the next catalog page. Fire-and-forget: failures
// surface through the state stream. No-op while a refresh or another page
// load is in flight, when the cursor says there is nothing more, or while
// loading is blocked by an earlier failure.
func (vm *MoviesViewModel) LoadNextPage() {
	vm.mu.Lock()
	if vm.closed || vm.loadBlocked {
		vm.mu.Unlock()
		return
	}
	switch vm.state.Phase {
	case PhaseRefreshing, PhaseLoadingMore:
		vm.mu.Unlock()
		return
	}

	page := vm.state.NextPageToLoad
	if vm.state.Phase == PhaseLoading {
		page = 1
	} else if !vm.state.CanLoadMore {
		vm.mu.Unlock()
		return
	}

	// Guard against re-fetching the first page when data is already present;
	// just advance the cursor.
	if page == 1 && vm.state.HasMovies() {
		if vm.state.Phase == PhaseContent {
			vm.state.NextPageToLoad = 2
			vm.publishLocked()
		}
		vm.mu.Unlock()
		return
	}

	if page == 1 {
		vm.state = MoviesState{Phase: PhaseLoading, NextPageToLoad: 1, CanLoadMore: true}
	} else {
		vm.state = MoviesState{
			Phase:          PhaseLoadingMore,
			Groups:         vm.state.Groups,
			NextPageToLoad: page,
			CanLoadMore:    true,
		}
	}
	vm.publishLocked()
	vm.mu.Unlock()

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		result, err := vm.svc.RequestPage(vm.ctx, page)
		if vm.ctx.Err() != nil {
			return // teardown, not an error
		}
		if err != nil {
			vm.failFetch(err)
			return
		}
		vm.completeFetch(page, result)
	}()
}

// completeFetch finalizes a successful page merge. The store snapshot is read
// back so the Content transition carries the merged data even when its
// emission has not been delivered yet.
func (vm *MoviesViewModel) completeFetch(page int, result domain.PageResult) {
	movies, storeErr := vm.store.All()

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	vm.lastResult = &result

	groups := vm.state.Groups
	hasData := vm.state.HasMovies()
	if storeErr == nil {
		groups = GroupByMonth(movies)
		hasData = len(movies) > 0
	}

	switch vm.state.Phase {
	case PhaseLoading:
		vm.loadBlocked = false
		next := 1
		if hasData {
			next = 2
		}
		vm.state = MoviesState{
			Phase:          PhaseContent,
			Groups:         groups,
			NextPageToLoad: next,
			CanLoadMore:    hasData && result.HasMorePages,
		}

	case PhaseLoadingMore:
		vm.loadBlocked = false
		vm.state = MoviesState{
			Phase:          PhaseContent,
			Groups:         groups,
			NextPageToLoad: page + 1,
			CanLoadMore:    result.HasMorePages,
		}

	case PhaseContent:
		// A cached replay already promoted the view; refine the flags.
		vm.loadBlocked = false
		vm.state.Groups = groups
		vm.state.CanLoadMore = result.HasMorePages
		if vm.state.NextPageToLoad <= page {
			vm.state.NextPageToLoad = page + 1
		}

	default:
		return
	}
	vm.publishLocked()
}

// failFetch moves to Error, retaining the items and cursor on display, and
// blocks further automatic page loads until something succeeds.
func (vm *MoviesViewModel) failFetch(err error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	vm.loadBlocked = true
	vm.state = MoviesState{
		Phase:          PhaseError,
		Groups:         vm.state.Groups,
		NextPageToLoad: vm.state.NextPageToLoad,
		CanLoadMore:    vm.state.CanLoadMore,
		Message:        domain.ErrorMessage(err),
	}
	vm.publishLocked()
}

// Refresh re-fetches the first page and purges stale non-favorites. No-op
// while already refreshing or during the initial load.
func (vm *MoviesViewModel) Refresh() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	switch vm.state.Phase {
	case PhaseRefreshing, PhaseLoading:
		vm.mu.Unlock()
		return
	}

	vm.state = MoviesState{
		Phase:          PhaseRefreshing,
		Groups:         vm.state.Groups,
		NextPageToLoad: vm.state.NextPageToLoad,
		CanLoadMore:    vm.state.CanLoadMore,
	}
	vm.publishLocked()
	vm.mu.Unlock()

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		err := vm.svc.Refresh(vm.ctx)
		if vm.ctx.Err() != nil {
			return
		}

		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.closed {
			return
		}

		if err != nil {
			// Cursor is deliberately not reset, so a later load-more
			// resumes where it left off before the refresh.
			vm.state = MoviesState{
				Phase:          PhaseError,
				Groups:         vm.state.Groups,
				NextPageToLoad: vm.state.NextPageToLoad,
				CanLoadMore:    vm.state.CanLoadMore,
				Message:        domain.ErrorMessage(err),
			}
			vm.publishLocked()
			return
		}

		vm.lastResult = nil
		vm.loadBlocked = false
		if vm.state.Phase == PhaseRefreshing {
			vm.state = MoviesState{
				Phase:          PhaseContent,
				Groups:         vm.state.Groups,
				NextPageToLoad: 2,
				CanLoadMore:    true,
			}
			vm.publishLocked()
		}
	}()
}

// ToggleFavorite flips a movie's favorite flag. On success the state is
// untouched here; the mutation arrives asynchronously via the store stream.
// On failure the machine moves to Error with retained items and cursor.
func (vm *MoviesViewModel) ToggleFavorite(m domain.Movie) {
	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		if err := vm.svc.ToggleFavorite(m); err != nil {
			vm.mu.Lock()
			defer vm.mu.Unlock()
			if vm.closed {
				return
			}
			vm.state = MoviesState{
				Phase:          PhaseError,
				Groups:         vm.state.Groups,
				NextPageToLoad: vm.state.NextPageToLoad,
				CanLoadMore:    vm.state.CanLoadMore,
				Message:        domain.ErrorMessage(err),
			}
			vm.publishLocked()
		}
	}()
}

// ClearError dismisses a transient message carried on Content. It does not
// unblock loading; only successful operations do that.
func (vm *MoviesViewModel) ClearError() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	if vm.state.Phase == PhaseContent && vm.state.Message != "" {
		vm.state.Message = ""
		vm.publishLocked()
	}
}

// publishLocked pushes the current state to the stream, latest-wins.
// Callers must hold mu.
func (vm *MoviesViewModel) publishLocked() {
	state := vm.state
	for {
		select {
		case vm.out <- state:
			return
		default:
			select {
			case <-vm.out:
			default:
			}
		}
	}
}
