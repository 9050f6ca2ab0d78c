package catalog

import (
	"context"
	"log/slog"

	"github.com/tmukas/filmvault/internal/domain"
)

// Service orchestrates remote fetches against the local movie store.
type Service struct {
	source domain.MovieSource
	store  domain.MovieStore
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(source domain.MovieSource, store domain.MovieStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, store: store, logger: logger}
}

// RequestPage fetches one catalog page and merges it into the store.
//
// The favorite-id set is snapshotted before the fetch; a toggle landing
// mid-flight is not reflected in this merge and is resolved by the next
// store emission. The store is untouched on any fetch failure.
func (s *Service) RequestPage(ctx context.Context, page int) (domain.PageResult, error) {
	favoriteIDs, err := s.store.FavoriteIDs()
	if err != nil {
		s.logger.Error("failed to read favorite ids", "error", err)
		return domain.PageResult{}, err
	}

	remote, err := s.source.DiscoverPage(ctx, page)
	if err != nil {
		s.logger.Error("failed to fetch page", "error", err, "page", page)
		return domain.PageResult{}, err
	}

	movies := tagFavorites(remote.Movies, favoriteIDs)
	if err := s.store.UpsertIfAbsent(movies, page); err != nil {
		s.logger.Error("failed to merge page", "error", err, "page", page)
		return domain.PageResult{}, err
	}

	result := domain.PageResult{HasMorePages: page < remote.TotalPages}
	s.logger.Debug("merged page", "page", page, "count", len(movies), "hasMore", result.HasMorePages)
	return result, nil
}

// Refresh re-fetches the first page and purges stale rows: everything not in
// (favorites ∪ fresh first page) is dropped, favorites survive regardless.
// Purge and merge run as one store transaction.
func (s *Service) Refresh(ctx context.Context) error {
	favoriteIDs, err := s.store.FavoriteIDs()
	if err != nil {
		s.logger.Error("failed to read favorite ids", "error", err)
		return err
	}

	remote, err := s.source.DiscoverPage(ctx, 1)
	if err != nil {
		s.logger.Error("failed to refresh", "error", err)
		return err
	}

	keep := make(map[int]struct{}, len(favoriteIDs)+len(remote.Movies))
	for id := range favoriteIDs {
		keep[id] = struct{}{}
	}
	for _, m := range remote.Movies {
		keep[m.ID] = struct{}{}
	}

	movies := tagFavorites(remote.Movies, favoriteIDs)
	if err := s.store.PurgeAndMerge(keep, movies, 1); err != nil {
		s.logger.Error("failed to apply refresh", "error", err)
		return err
	}

	s.logger.Debug("refreshed catalog", "fresh", len(movies), "kept", len(keep))
	return nil
}

// SetFavorite updates one movie's favorite flag. Pure store mutation;
// pagination state is never touched.
func (s *Service) SetFavorite(id int, favorite bool) error {
	if err := s.store.SetFavorite(id, favorite); err != nil {
		s.logger.Error("failed to set favorite", "error", err, "id", id)
		return err
	}
	s.logger.Debug("set favorite", "id", id, "favorite", favorite)
	return nil
}

// ToggleFavorite flips the favorite flag as known at call time.
func (s *Service) ToggleFavorite(m domain.Movie) error {
	return s.SetFavorite(m.ID, !m.Favorite)
}

// tagFavorites marks each remote movie favorite iff its id was in the
// snapshot. The remote payload carries no favorite concept.
func tagFavorites(movies []domain.Movie, favoriteIDs map[int]struct{}) []domain.Movie {
	tagged := make([]domain.Movie, len(movies))
	for i, m := range movies {
		_, fav := favoriteIDs[m.ID]
		m.Favorite = fav
		tagged[i] = m
	}
	return tagged
}
