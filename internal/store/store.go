package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tmukas/filmvault/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketMovies = []byte("movies")

// record is the stored row: a movie plus the page that introduced it.
// PageIndex never leaves this package.
type record struct {
	domain.Movie
	PageIndex int `json:"pageIndex"`
}

// MovieStore implements domain.MovieStore using BoltDB.
// With an empty path it runs memory-only (no persistence).
type MovieStore struct {
	db *bolt.DB

	mu      sync.RWMutex
	records map[int]record // authoritative in-memory snapshot

	subMu   sync.Mutex
	subs    map[int]*subscriber
	nextSub int
}

type subscriber struct {
	ch            chan []domain.Movie
	favoritesOnly bool
}

// Open opens (or creates) the movie store at dir. An empty dir selects
// memory-only mode.
func Open(dir string) (*MovieStore, error) {
	s := &MovieStore{
		records: make(map[int]record),
		subs:    make(map[int]*subscriber),
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "filmvault.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMovies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// load hydrates the in-memory snapshot from disk.
func (s *MovieStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		return b.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %x: %w", k, err)
			}
			s.records[rec.ID] = rec
			return nil
		})
	})
}

func (s *MovieStore) Close() error {
	s.subMu.Lock()
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func movieKey(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// UpsertIfAbsent inserts rows for ids not yet stored; existing rows are left
// untouched. One emission per call, even when nothing changed (the store
// truth is re-announced either way, matching a reactive query re-run).
func (s *MovieStore) UpsertIfAbsent(movies []domain.Movie, pageIndex int) error {
	s.mu.Lock()
	var added []record
	for _, m := range movies {
		if _, exists := s.records[m.ID]; exists {
			continue
		}
		added = append(added, record{Movie: m, PageIndex: pageIndex})
	}
	if err := s.persist(added, nil); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	for _, rec := range added {
		s.records[rec.ID] = rec
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// PurgeAndMerge runs refresh's purge and first-page merge as one transaction:
// rows outside keep are dropped, then the fresh rows are inserted-if-absent.
func (s *MovieStore) PurgeAndMerge(keep map[int]struct{}, movies []domain.Movie, pageIndex int) error {
	s.mu.Lock()
	var removed []int
	for id := range s.records {
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
	}
	var added []record
	for _, m := range movies {
		if _, exists := s.records[m.ID]; exists {
			if contains(removed, m.ID) {
				// Row is being purged and re-introduced by the fresh page.
				added = append(added, record{Movie: m, PageIndex: pageIndex})
			}
			continue
		}
		added = append(added, record{Movie: m, PageIndex: pageIndex})
	}
	if err := s.persist(added, removed); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	for _, id := range removed {
		delete(s.records, id)
	}
	for _, rec := range added {
		s.records[rec.ID] = rec
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *MovieStore) SetFavorite(id int, favorite bool) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	rec.Favorite = favorite
	if err := s.persist([]record{rec}, nil); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	s.records[id] = rec
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MovieStore) FavoriteIDs() (map[int]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[int]struct{})
	for id, rec := range s.records {
		if rec.Favorite {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *MovieStore) All() ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(false), nil
}

func (s *MovieStore) Favorites() ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(true), nil
}

func (s *MovieStore) DeleteExcept(keep map[int]struct{}) error {
	return s.PurgeAndMerge(keep, nil, 0)
}

func (s *MovieStore) Clear() error {
	return s.PurgeAndMerge(map[int]struct{}{}, nil, 0)
}

// persist writes added and removed rows to disk in one bolt transaction.
// Memory-only mode persists nothing.
func (s *MovieStore) persist(added []record, removed []int) error {
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		for _, id := range removed {
			if err := b.Delete(movieKey(id)); err != nil {
				return err
			}
		}
		for _, rec := range added {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put(movieKey(rec.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// snapshot returns records ordered by release date descending, id descending
// as tiebreak. Callers must hold mu.
func (s *MovieStore) snapshot(favoritesOnly bool) []domain.Movie {
	movies := make([]domain.Movie, 0, len(s.records))
	for _, rec := range s.records {
		if favoritesOnly && !rec.Favorite {
			continue
		}
		movies = append(movies, rec.Movie)
	}
	sort.Slice(movies, func(i, j int) bool {
		if movies[i].ReleaseDate != movies[j].ReleaseDate {
			return movies[i].ReleaseDate > movies[j].ReleaseDate
		}
		return movies[i].ID > movies[j].ID
	})
	return movies
}

// Subscribe returns a coalescing stream of the full ordered movie list.
// The current list is delivered immediately.
func (s *MovieStore) Subscribe() (<-chan []domain.Movie, func()) {
	return s.subscribe(false)
}

// SubscribeFavorites returns the same stream restricted to favorited rows.
func (s *MovieStore) SubscribeFavorites() (<-chan []domain.Movie, func()) {
	return s.subscribe(true)
}

func (s *MovieStore) subscribe(favoritesOnly bool) (<-chan []domain.Movie, func()) {
	sub := &subscriber{
		ch:            make(chan []domain.Movie, 1),
		favoritesOnly: favoritesOnly,
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()

	s.mu.RLock()
	sub.send(s.snapshot(favoritesOnly))
	s.mu.RUnlock()

	cancel := func() {
		s.subMu.Lock()
		if cur, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(cur.ch)
		}
		s.subMu.Unlock()
	}
	return sub.ch, cancel
}

// notify pushes fresh snapshots to all subscribers.
func (s *MovieStore) notify() {
	s.mu.RLock()
	all := s.snapshot(false)
	favs := s.snapshot(true)
	s.mu.RUnlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		if sub.favoritesOnly {
			sub.send(favs)
		} else {
			sub.send(all)
		}
	}
}

// send delivers latest-wins: a pending unread snapshot is replaced rather
// than queued, so consumers always fold the newest store truth.
func (sub *subscriber) send(movies []domain.Movie) {
	for {
		select {
		case sub.ch <- movies:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}
