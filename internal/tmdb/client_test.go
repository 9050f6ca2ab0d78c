package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmukas/filmvault/internal/domain"
)

func testClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Language:       "en-US",
		MinVoteAverage: 7.0,
		MinVoteCount:   100,
	}, nil)
}

func TestDiscoverPageDecodesResponse(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"api_key": q.Get("api_key"),
			"page":    q.Get("page"),
			"sort_by": q.Get("sort_by"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 2,
			"results": [
				{"id": 42, "title": "The Answer", "overview": "plot",
				 "poster_path": "/poster.jpg", "backdrop_path": "/backdrop.jpg",
				 "release_date": "2024-01-15", "vote_average": 8.1,
				 "vote_count": 500, "popularity": 12.5,
				 "genre_ids": [18, 53], "original_language": "en", "adult": false}
			],
			"total_pages": 10,
			"total_results": 200
		}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).DiscoverPage(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotQuery["api_key"])
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "primary_release_date.desc", gotQuery["sort_by"])

	assert.Equal(t, 10, page.TotalPages)
	require.Len(t, page.Movies, 1)
	m := page.Movies[0]
	assert.Equal(t, 42, m.ID)
	assert.Equal(t, "The Answer", m.Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/w342/poster.jpg", m.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/backdrop.jpg", m.BackdropURL)
	assert.Equal(t, "2024-01-15", m.ReleaseDate)
	assert.Equal(t, []int{18, 53}, m.GenreIDs)
	assert.False(t, m.Favorite)
}

func TestDiscoverPageDefaultsTotalPagesToOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).DiscoverPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Movies)
}

func TestDiscoverPageClassifiesProtocolErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).DiscoverPage(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrProtocol)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).DiscoverPage(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrProtocol)
	})
}

func TestDiscoverPageClassifiesNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).DiscoverPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNetworkUnavailable)
}

func TestDiscoverPageClassifiesTimeouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.DiscoverPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestDiscoverPagePassesThroughCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).DiscoverPage(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveImageURL(t *testing.T) {
	assert.Equal(t, "", resolveImageURL("", "w342"))
	assert.Equal(t, "", resolveImageURL("  ", "w342"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w342/a.jpg", resolveImageURL("/a.jpg", "w342"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/b.jpg", resolveImageURL("b.jpg", "w780"))
	assert.Equal(t, "https://cdn.example.com/c.jpg", resolveImageURL("https://cdn.example.com/c.jpg", "w342"))
}
