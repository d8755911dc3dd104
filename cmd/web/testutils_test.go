package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/aoideee/booknotes/internal/data"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestApplication returns an application backed by a fresh in-memory
// SQLite database, with logging discarded and the rate limiter off.
func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, data.Migrate(context.Background(), db, data.DialectSQLite))

	templateCache, err := newTemplateCache()
	require.NoError(t, err)

	return &applicationDependencies{
		logger:        slog.New(slog.DiscardHandler),
		models:        data.NewModels(db, data.DialectSQLite),
		templateCache: templateCache,
	}
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	// Report redirects instead of following them.
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &testServer{ts}
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	require.NoError(t, err)
	return rs.StatusCode, rs.Header, string(body)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().PostForm(ts.URL+path, form)
	require.NoError(t, err)
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	require.NoError(t, err)
	return rs.StatusCode, rs.Header, string(body)
}

// failingStore is a BookStore whose every call fails like a dropped connection.
type failingStore struct{}

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func (failingStore) List(context.Context, data.SortMode) ([]*data.Book, error) {
	return nil, errConnRefused
}

func (failingStore) Get(context.Context, int64) (*data.Book, error) { return nil, errConnRefused }

func (failingStore) Insert(context.Context, *data.Book) error { return errConnRefused }

func (failingStore) Update(context.Context, *data.Book) error { return errConnRefused }

func (failingStore) Delete(context.Context, int64) error { return errConnRefused }

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()

	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return &d
}
