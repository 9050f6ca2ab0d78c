package domain

import "context"

// MovieSource fetches pages of movies from the remote catalog API.
type MovieSource interface {
	// DiscoverPage fetches one page of the catalog. Page numbers start at 1.
	DiscoverPage(ctx context.Context, page int) (Page, error)
}

// MovieStore is the local persistent movie table.
//
// Writes are all-or-nothing per call. Every mutation produces one emission
// on each active subscription carrying the full current ordered list.
type MovieStore interface {
	// UpsertIfAbsent inserts movies that are not yet stored, tagged with the
	// page that introduced them. Rows whose id already exists are left
	// untouched, favorite flag included.
	UpsertIfAbsent(movies []Movie, pageIndex int) error

	// PurgeAndMerge deletes every stored row whose id is not in keep, then
	// inserts the given movies (insert-if-absent, tagged pageIndex), all in
	// a single transaction with a single emission.
	PurgeAndMerge(keep map[int]struct{}, movies []Movie, pageIndex int) error

	// SetFavorite updates one row's favorite flag. Unknown ids are a no-op.
	SetFavorite(id int, favorite bool) error

	// FavoriteIDs returns the ids of all favorited rows.
	FavoriteIDs() (map[int]struct{}, error)

	// All returns every stored movie ordered by release date descending.
	All() ([]Movie, error)

	// Favorites returns favorited movies ordered by release date descending.
	Favorites() ([]Movie, error)

	// DeleteExcept removes every row whose id is not in keep.
	DeleteExcept(keep map[int]struct{}) error

	// Clear removes all rows.
	Clear() error

	// Subscribe returns a stream of the full ordered movie list, emitted
	// after every mutation. The channel coalesces: a slow consumer sees the
	// latest list, not a backlog. cancel detaches the subscription.
	Subscribe() (ch <-chan []Movie, cancel func())

	// SubscribeFavorites is Subscribe restricted to favorited rows.
	SubscribeFavorites() (ch <-chan []Movie, cancel func())

	Close() error
}
