package data

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// A single connection keeps every query on the same in-memory database.
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db, DialectSQLite))
	return db
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func Test_InsertThenList_ContainsExactlyOneNewRecord(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	existing := &Book{Title: "Emma", Author: "Austen", DateRead: date(2023, 5, 1)}
	require.NoError(t, m.Insert(ctx, existing))

	dune := &Book{Title: "Dune", Author: "Herbert"}
	require.NoError(t, m.Insert(ctx, dune))

	assert.NotZero(t, dune.ID)
	assert.NotEqual(t, existing.ID, dune.ID)

	books, err := m.List(ctx, SortRecency)
	require.NoError(t, err)
	require.Len(t, books, 2)

	matches := 0
	for _, b := range books {
		if b.Title == "Dune" && b.Author == "Herbert" {
			matches++
			assert.Equal(t, dune.ID, b.ID)
			assert.Nil(t, b.ISBN)
			assert.Nil(t, b.Rating)
			assert.Nil(t, b.Notes)
		}
	}
	assert.Equal(t, 1, matches)
}

func Test_Insert_DefaultsDateReadToToday(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	book := &Book{Title: "Dune", Author: "Herbert"}
	require.NoError(t, m.Insert(ctx, book))

	got, err := m.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateRead)
	assert.Equal(t, today().Format(time.DateOnly), got.DateReadValue())
}

func Test_Get_UnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	_, err := m.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = m.Get(ctx, 0)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func Test_Update_OverwritesEveryField(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	book := &Book{
		Title:    "Dune",
		Author:   "Herbert",
		ISBN:     ptr("9780441013593"),
		Rating:   ptr(4.5),
		Notes:    ptr("spice"),
		DateRead: date(2024, 2, 10),
	}
	require.NoError(t, m.Insert(ctx, book))

	updated := &Book{
		ID:       book.ID,
		Title:    "Dune Messiah",
		Author:   "Frank Herbert",
		DateRead: date(2024, 3, 1),
	}
	require.NoError(t, m.Update(ctx, updated))

	got, err := m.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Nil(t, got.ISBN, "isbn should be cleared, not kept from the previous row")
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.Notes)
	assert.Equal(t, "2024-03-01", got.DateReadValue())
}

func Test_Update_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	err := m.Update(ctx, &Book{ID: 42, Title: "Ghost", Author: "Nobody"})
	require.NoError(t, err)

	books, err := m.List(ctx, SortRecency)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func Test_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	book := &Book{Title: "Dune", Author: "Herbert"}
	require.NoError(t, m.Insert(ctx, book))

	require.NoError(t, m.Delete(ctx, book.ID))

	_, err := m.Get(ctx, book.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.NoError(t, m.Delete(ctx, book.ID), "deleting twice is not an error")
	assert.NoError(t, m.Delete(ctx, 999))
}

func Test_List_EmptyTable(t *testing.T) {
	m := NewBookModel(newTestDB(t), DialectSQLite)

	books, err := m.List(context.Background(), SortTitle)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func Test_List_SortModes(t *testing.T) {
	ctx := context.Background()
	m := NewBookModel(newTestDB(t), DialectSQLite)

	for _, b := range []*Book{
		{Title: "Neuromancer", Author: "Gibson", Rating: ptr(4.0), DateRead: date(2024, 1, 5)},
		{Title: "Anathem", Author: "Stephenson", Rating: ptr(5.0), DateRead: date(2023, 7, 1)},
		{Title: "Hyperion", Author: "Simmons", Rating: ptr(4.0), DateRead: date(2024, 6, 2)},
	} {
		require.NoError(t, m.Insert(ctx, b))
	}

	titles := func(books []*Book) []string {
		out := make([]string, 0, len(books))
		for _, b := range books {
			out = append(out, b.Title)
		}
		return out
	}

	tests := []struct {
		mode string
		want []string
	}{
		{"recency", []string{"Hyperion", "Neuromancer", "Anathem"}},
		{"rating", []string{"Anathem", "Hyperion", "Neuromancer"}},
		{"title", []string{"Anathem", "Hyperion", "Neuromancer"}},
		{"bogus", []string{"Hyperion", "Neuromancer", "Anathem"}},
		{"", []string{"Hyperion", "Neuromancer", "Anathem"}},
	}

	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			books, err := m.List(ctx, ParseSortMode(tc.mode))
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(books))
		})
	}
}

func Test_List_OrderingHoldsForArbitraryShelves(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := NewBookModel(db, DialectSQLite)
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(rt *rapid.T) {
		_, err := db.ExecContext(ctx, "DELETE FROM books")
		require.NoError(rt, err)

		n := rapid.IntRange(0, 12).Draw(rt, "n")
		for i := 0; i < n; i++ {
			rating := float64(rapid.IntRange(0, 10).Draw(rt, "rating")) / 2
			read := epoch.AddDate(0, 0, rapid.IntRange(0, 30).Draw(rt, "day"))
			book := &Book{
				Title:    rapid.StringMatching(`[A-Za-z]{1,10}`).Draw(rt, "title"),
				Author:   "Anon",
				Rating:   &rating,
				DateRead: &read,
			}
			require.NoError(rt, m.Insert(ctx, book))
		}

		raw := rapid.SampledFrom([]string{"recency", "rating", "title", "unknown"}).Draw(rt, "sort")
		mode := ParseSortMode(raw)

		books, err := m.List(ctx, mode)
		require.NoError(rt, err)
		require.Len(rt, books, n)

		for i := 1; i < len(books); i++ {
			prev, cur := books[i-1], books[i]
			switch mode {
			case SortTitle:
				if prev.Title > cur.Title {
					rt.Fatalf("title order broken at %d: %q before %q", i, prev.Title, cur.Title)
				}
			case SortRating:
				if *prev.Rating < *cur.Rating {
					rt.Fatalf("rating order broken at %d: %v before %v", i, *prev.Rating, *cur.Rating)
				}
				if *prev.Rating == *cur.Rating && prev.DateRead.Before(*cur.DateRead) {
					rt.Fatalf("rating tie not broken by date at %d", i)
				}
			default:
				if prev.DateRead.Before(*cur.DateRead) {
					rt.Fatalf("recency order broken at %d: %v before %v", i, prev.DateRead, cur.DateRead)
				}
			}
		}
	})
}
