package catalog

import (
	"log/slog"
	"sync"

	"github.com/tmukas/filmvault/internal/domain"
)

// FavoritesViewModel drives the favorites view: Loading until the first
// store emission, then Empty or Content, with Error retaining the list on a
// failed toggle.
type FavoritesViewModel struct {
	svc    *Service
	store  domain.MovieStore
	logger *slog.Logger

	mu          sync.Mutex
	state       FavoritesState
	closed      bool
	unsubscribe func()
	wg          sync.WaitGroup

	out chan FavoritesState
}

// NewFavoritesViewModel creates the favorites view model. Call Start to
// attach it.
func NewFavoritesViewModel(svc *Service, store domain.MovieStore, logger *slog.Logger) *FavoritesViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesViewModel{
		svc:    svc,
		store:  store,
		logger: logger,
		state:  FavoritesState{Phase: FavoritesLoading},
		out:    make(chan FavoritesState, 1),
	}
}

// Start subscribes to the favorites stream.
func (vm *FavoritesViewModel) Start() {
	ch, cancel := vm.store.SubscribeFavorites()

	vm.mu.Lock()
	vm.unsubscribe = cancel
	vm.mu.Unlock()

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		for favorites := range ch {
			vm.onEmission(favorites)
		}
	}()
}

// States returns the observable favorites-state stream (coalescing).
func (vm *FavoritesViewModel) States() <-chan FavoritesState {
	return vm.out
}

// Current returns the state as of now.
func (vm *FavoritesViewModel) Current() FavoritesState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Close detaches the subscription; no transitions occur afterwards.
func (vm *FavoritesViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	unsubscribe := vm.unsubscribe
	vm.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	vm.wg.Wait()
	close(vm.out)
}

func (vm *FavoritesViewModel) onEmission(favorites []domain.Movie) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}

	if len(favorites) == 0 {
		vm.state = FavoritesState{Phase: FavoritesEmpty}
	} else {
		vm.state = FavoritesState{Phase: FavoritesContent, Favorites: favorites}
	}
	vm.publishLocked()
}

// ToggleFavorite flips a movie's favorite flag; on failure the current list
// is retained alongside the error message.
func (vm *FavoritesViewModel) ToggleFavorite(m domain.Movie) {
	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		if err := vm.svc.ToggleFavorite(m); err != nil {
			vm.mu.Lock()
			defer vm.mu.Unlock()
			if vm.closed {
				return
			}
			vm.state = FavoritesState{
				Phase:     FavoritesError,
				Favorites: vm.state.Favorites,
				Message:   domain.ErrorMessage(err),
			}
			vm.publishLocked()
		}
	}()
}

func (vm *FavoritesViewModel) publishLocked() {
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
